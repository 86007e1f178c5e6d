package catalog

import "math/rand"

// TileKind is the closed set of special-tile behaviors.
type TileKind string

const (
	TileTreasure      TileKind = "treasure"
	TileTrap          TileKind = "trap"
	TileTeleport      TileKind = "teleport"
	TileMultiplier    TileKind = "multiplier"
	TileSwap          TileKind = "swap"
	TilePauseToll     TileKind = "pause_toll"
	TileTurbo         TileKind = "turbo"
	TileDrain         TileKind = "drain"
	TileRebound       TileKind = "rebound"
	TileBlackHole     TileKind = "black_hole"
	TilePMWell        TileKind = "pm_well"
	TileMagnet        TileKind = "magnet"
	TileScrapExchange TileKind = "scrap_exchange"
	TileMine          TileKind = "mine"
)

// Tile is one placed special tile. Variant parameters only make sense for
// their kind: Value for treasure/trap/mine, Min/Max for teleport, Percent for
// drain, Back for black_hole, Pull for magnet. PlacedBy tags runtime mines.
type Tile struct {
	Kind       TileKind `json:"kind"`
	VariantID  string   `json:"variant_id"`
	Title      string   `json:"title"`
	Symbol     string   `json:"symbol"`
	Value      int      `json:"value,omitempty"`
	Min        int      `json:"min,omitempty"`
	Max        int      `json:"max,omitempty"`
	Percent    int      `json:"percent,omitempty"`
	Back       int      `json:"back,omitempty"`
	Pull       int      `json:"pull,omitempty"`
	EnergyToll int      `json:"energy_toll,omitempty"`
	PMToll     int      `json:"pm_toll,omitempty"`
	PlacedBy   string   `json:"placed_by,omitempty"`
}

// Negative reports whether the tile belongs to the set a phase-shifted
// player passes through untouched.
func (t Tile) Negative() bool {
	switch t.Kind {
	case TileTrap, TilePauseToll, TileDrain, TileRebound, TileScrapExchange, TileBlackHole, TileMine:
		return true
	}
	return false
}

// Board geometry and sampling bounds.
const (
	FinishCell    = 75
	StartCell     = 1
	SpecialTiles  = 20
	FirstTileCell = 4
	LastTileCell  = 73
	InitialEnergy = 600
)

var tilePool = []Tile{
	{Kind: TileTreasure, VariantID: "tesoro_menor", Title: "Tesoro Menor", Symbol: "$", Value: 70},
	{Kind: TileTreasure, VariantID: "tesoro_mayor", Title: "Tesoro Mayor", Symbol: "$$", Value: 120},
	{Kind: TileTrap, VariantID: "trampa_energia", Title: "Trampa de Energía", Symbol: "X", Value: -60},
	{Kind: TileTrap, VariantID: "trampa_peligrosa", Title: "Trampa Peligrosa", Symbol: "XX", Value: -80},
	{Kind: TileTeleport, VariantID: "portal_magico", Title: "Portal Mágico", Symbol: "T", Min: 3, Max: 5},
	{Kind: TileTeleport, VariantID: "portal_avanzado", Title: "Portal Avanzado", Symbol: "T+", Min: 4, Max: 6},
	{Kind: TileMultiplier, VariantID: "amplificador", Title: "Amplificador", Symbol: "*2"},
	{Kind: TileSwap, VariantID: "intercambio", Title: "Cámara de Intercambio", Symbol: "S"},
	{Kind: TilePauseToll, VariantID: "pausa", Title: "Zona de Pausa", Symbol: "P"},
	{Kind: TileTurbo, VariantID: "acelerador", Title: "Acelerador", Symbol: "!"},
	{Kind: TileDrain, VariantID: "vampiro", Title: "Drenaje de Energía", Symbol: "V", Percent: 10},
	{Kind: TileRebound, VariantID: "rebote", Title: "Trampolín Inverso", Symbol: "R", Min: 5, Max: 10},
	{Kind: TileBlackHole, VariantID: "agujero_negro", Title: "Agujero Negro", Symbol: "⚫", Back: 10},
	{Kind: TilePMWell, VariantID: "pozo_pm", Title: "Pozo de PM", Symbol: "⭐"},
	{Kind: TileMagnet, VariantID: "iman", Title: "Imán", Symbol: "🧲", Pull: 2},
	{Kind: TileScrapExchange, VariantID: "chatarreria", Title: "Chatarrería", Symbol: "⚙️", Value: -50},
}

// TilePool returns a copy of the placeable tile variants. Mines are runtime
// only and never sampled.
func TilePool() []Tile {
	out := make([]Tile, len(tilePool))
	copy(out, tilePool)
	return out
}

// MineTile builds the runtime trap placed by the mina_de_energia ability.
func MineTile(placer string) Tile {
	return Tile{Kind: TileMine, VariantID: "mina_energia", Title: "Mina de Energía", Symbol: "💣", Value: -60, PlacedBy: placer}
}

// SampleTiles draws the match's special-tile layout: every variant is placed
// once (shuffled), then remaining slots are filled by sampling the pool with
// replacement. Cells are distinct and drawn uniformly from
// [FirstTileCell, LastTileCell].
func SampleTiles(rng *rand.Rand) map[int]Tile {
	variants := TilePool()
	rng.Shuffle(len(variants), func(i, j int) { variants[i], variants[j] = variants[j], variants[i] })

	picked := variants
	if len(picked) > SpecialTiles {
		picked = picked[:SpecialTiles]
	}
	for len(picked) < SpecialTiles {
		picked = append(picked, tilePool[rng.Intn(len(tilePool))])
	}

	cells := make([]int, 0, LastTileCell-FirstTileCell+1)
	for c := FirstTileCell; c <= LastTileCell; c++ {
		cells = append(cells, c)
	}
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	placed := make(map[int]Tile, SpecialTiles)
	for i, t := range picked {
		placed[cells[i]] = t
	}
	return placed
}
