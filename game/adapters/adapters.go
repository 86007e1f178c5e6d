// Package adapters declares the narrow interfaces the core needs from the
// outside world: account storage, achievement checks and social presence.
// The core owns no persistent state; implementations own their stores.
package adapters

import (
	"context"
	"time"
)

// Event types forwarded to the achievement checker.
const (
	EventGameFinished       = "game_finished"
	EventAbilityUsed        = "ability_used"
	EventRoomCreated        = "room_created"
	EventDiceRolled         = "dice_rolled"
	EventSpecialTile        = "special_tile"
	EventGameEvent          = "game_event"
	EventLogin              = "login"
	EventFriendAdded        = "friend_added"
	EventPrivateMessageSent = "private_message_sent"
)

// Account is the persistent profile behind a player name.
type Account struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Level           int            `json:"level"`
	XP              int            `json:"xp"`
	Counters        map[string]int `json:"counters"`
	ConsecutiveWins int            `json:"consecutive_wins"`
}

// AccountUpdate carries the deltas persisted after a match.
type AccountUpdate struct {
	XPDelta         int
	LevelDelta      int
	Counters        map[string]int
	ConsecutiveWins int
}

// AccountStore finds and persists player accounts.
type AccountStore interface {
	Find(ctx context.Context, name string) (*Account, error)
	Persist(ctx context.Context, account *Account, update AccountUpdate) error
}

// Achievement is the display form of an unlocked achievement.
type Achievement struct {
	InternalID  string `json:"internal_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

// AchievementChecker evaluates typed game events against a player's
// unlock state.
type AchievementChecker interface {
	Check(ctx context.Context, name, eventType string, eventData map[string]any) ([]string, error)
	Info(internalID string) (Achievement, bool)
}

// Presence statuses.
const (
	StatusOnline  = "online"
	StatusInGame  = "in_game"
	StatusOffline = "offline"
)

// PresenceTracker records the last observed status per player. A status
// older than its freshness window reads back as offline.
type PresenceTracker interface {
	Set(name, status string, extra map[string]string)
	Get(name string) string
}

// PresenceWindow is how long a heartbeat keeps a player online.
const PresenceWindow = 60 * time.Second
