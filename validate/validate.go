// Package validate checks client-supplied input at the transport boundary.
// The engine trusts its callers; everything arriving over the wire passes
// through here first.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/voltrace/voltrace/game/catalog"
)

var (
	ErrUsername    = errors.New("username must be 2-20 characters of letters, digits, _ or -")
	ErrRoomID      = errors.New("room id must be 8 hex characters")
	ErrChatEmpty   = errors.New("chat message is empty")
	ErrChatTooLong = errors.New("chat message exceeds 500 characters")
	ErrAbilitySlot = errors.New("ability slot must be between 1 and 4")
	ErrPackTier    = errors.New("unknown perk pack tier")
	ErrPerkID      = errors.New("perk id is empty")
)

const maxChatLen = 500

var (
	usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_-]{2,20}$`)
	roomIDRe   = regexp.MustCompile(`^[0-9a-f]{8}$`)
)

// Username checks a player name as supplied at authentication.
func Username(name string) error {
	if !usernameRe.MatchString(name) {
		return ErrUsername
	}
	return nil
}

// RoomID checks a room identifier. Matching is case-insensitive, like the
// registry.
func RoomID(id string) error {
	if !roomIDRe.MatchString(strings.ToLower(id)) {
		return ErrRoomID
	}
	return nil
}

// Chat trims and bounds a chat message, returning the cleaned text.
func Chat(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrChatEmpty
	}
	if utf8.RuneCountInString(text) > maxChatLen {
		return "", ErrChatTooLong
	}
	return text, nil
}

// AbilitySlot checks the 1-based slot index clients send. The engine
// counts slots the same way, so the index passes through unchanged.
func AbilitySlot(idx int) (int, error) {
	if idx < 1 || idx > 4 {
		return 0, ErrAbilitySlot
	}
	return idx, nil
}

// PackTier resolves a wire tier string to the catalog type.
func PackTier(tier string) (catalog.PerkPackTier, error) {
	t := catalog.PerkPackTier(strings.ToLower(tier))
	if _, ok := catalog.PackByTier(t); !ok {
		return "", ErrPackTier
	}
	return t, nil
}

// PerkID checks a perk selection id.
func PerkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrPerkID
	}
	return nil
}

// KitID checks an optional kit selection. Empty means auto-assign.
func KitID(id string) error {
	if id == "" {
		return nil
	}
	_, err := catalog.KitByID(id)
	return err
}
