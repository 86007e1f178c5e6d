package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltrace/voltrace/game/catalog"
)

func TestNewBoardPlacesTilesInRange(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(7)), catalog.DefaultEnergyPacks())
	require.Len(t, b.Tiles, catalog.SpecialTiles)
	for cell := range b.Tiles {
		require.GreaterOrEqual(t, cell, catalog.FirstTileCell)
		require.LessOrEqual(t, cell, catalog.LastTileCell)
	}
	require.NotEmpty(t, b.Packs)
}

func TestConsumePackHalvesUntilSpent(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(7)), []catalog.EnergyPack{{Name: "cache", Cell: 10, Value: 80}})
	pack, ok := b.PackAt(10)
	require.True(t, ok)

	var grants []int
	for {
		grants = append(grants, b.ConsumePack(pack))
		if pack.Value == 0 {
			break
		}
	}
	require.Equal(t, []int{80, 40, 20, 10}, grants)

	_, ok = b.PackAt(10)
	require.False(t, ok)
}

func TestConsumeNegativePackCollapsesToo(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(7)), []catalog.EnergyPack{{Name: "leak", Cell: 3, Value: -30}})
	pack, _ := b.PackAt(3)

	require.Equal(t, -30, b.ConsumePack(pack))
	require.Equal(t, -15, b.ConsumePack(pack))
	require.Zero(t, pack.Value)
}

func TestPlaceMineValidations(t *testing.T) {
	b := NewBoard(rand.New(rand.NewSource(7)), nil)
	cell := 0
	for c := catalog.FirstTileCell; c <= catalog.LastTileCell; c++ {
		if _, ok := b.TileAt(c); !ok {
			cell = c
			break
		}
	}
	require.NotZero(t, cell)

	require.NoError(t, b.PlaceMine(cell, -60, "alice"))
	tile, ok := b.TileAt(cell)
	require.True(t, ok)
	require.Equal(t, catalog.TileMine, tile.Kind)
	require.True(t, tile.Negative())

	require.ErrorIs(t, b.PlaceMine(cell, -60, "bob"), ErrTileCellOccupied)
	require.Error(t, b.PlaceMine(catalog.FinishCell, -60, "bob"))
}
