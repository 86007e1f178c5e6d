// Package engine implements the authoritative match loop: the two-phase turn
// protocol (roll and move, then resolve tiles and collisions), the ability
// dispatch table with its interception pipeline, global round events, the
// bounty, the perk shop, and end-of-match scoring.
//
// A Match is not safe for concurrent use; the room coordinator serializes
// every call under its own lock. All randomness flows through the per-match
// generator so matches are reproducible from a seed.
package engine
