package engine

import (
	"math/rand"

	"github.com/voltrace/voltrace/game/catalog"
)

// Board is the 75-cell track for one match. Tiles are immutable after
// creation except for runtime mines; pack values decay on pickup.
type Board struct {
	Tiles map[int]catalog.Tile
	Packs []catalog.EnergyPack
}

// NewBoard samples the special-tile layout and lays out the energy packs.
func NewBoard(rng *rand.Rand, packs []catalog.EnergyPack) *Board {
	laid := make([]catalog.EnergyPack, len(packs))
	copy(laid, packs)
	return &Board{
		Tiles: catalog.SampleTiles(rng),
		Packs: laid,
	}
}

// TileAt returns the special tile on a cell, if any.
func (b *Board) TileAt(cell int) (catalog.Tile, bool) {
	t, ok := b.Tiles[cell]
	return t, ok
}

// PlaceMine puts a runtime mine on a cell. Fails if the cell is the finish
// or already carries a special tile.
func (b *Board) PlaceMine(cell, value int, placer string) error {
	if cell >= catalog.FinishCell {
		return ErrTileCellOccupied
	}
	if _, taken := b.Tiles[cell]; taken {
		return ErrTileCellOccupied
	}
	mine := catalog.MineTile(placer)
	mine.Value = value
	b.Tiles[cell] = mine
	return nil
}

// RemoveTile clears a cell, used when a mine is consumed.
func (b *Board) RemoveTile(cell int) {
	delete(b.Tiles, cell)
}

// PackAt finds the live pack on a cell. Spent packs (value 0) are ignored.
func (b *Board) PackAt(cell int) (*catalog.EnergyPack, bool) {
	for i := range b.Packs {
		if b.Packs[i].Cell == cell && b.Packs[i].Value != 0 {
			return &b.Packs[i], true
		}
	}
	return nil, false
}

// ConsumePack halves the pack's value toward zero, collapsing small
// remainders. Returns the value granted by this pickup.
func (b *Board) ConsumePack(p *catalog.EnergyPack) int {
	granted := p.Value
	p.Value /= 2
	if p.Value > -catalog.PackSpentThreshold && p.Value < catalog.PackSpentThreshold {
		p.Value = 0
	}
	return granted
}
