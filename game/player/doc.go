// Package player holds the per-player in-match state: position, energy,
// command points, active effects, cooldowns, perks, and the per-turn flags
// the match engine gates on. The energy pipeline (shield, aislamiento,
// pain transfer, energy block, last breath) lives here; everything that needs
// the rest of the match goes through the Roster interface.
package player
