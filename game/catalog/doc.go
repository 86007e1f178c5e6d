// Package catalog holds the static game content: ability definitions, perk
// definitions, kit compositions, the special-tile pool, and the energy-pack
// loader. Everything in this package is read-only after boot; the match
// engine consults it by id and never mutates it.
package catalog
