package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnergyPack is a cell-bound refill or drain. Value halves on pickup and
// collapses to 0 once |value| < 10.
type EnergyPack struct {
	Name  string `json:"name"`
	Cell  int    `json:"cell"`
	Value int    `json:"value"`
}

// The value below which a pack is considered spent.
const PackSpentThreshold = 10

// defaultPacks is the built-in layout used when no pack file is available.
var defaultPacks = [][2]int{
	{3, 70}, {7, -30}, {12, 80}, {16, 50}, {19, -40}, {23, 90}, {27, -50},
	{31, 60}, {34, 120}, {38, -60}, {42, 80}, {45, -70}, {48, 100}, {52, 70},
	{55, -80}, {58, 110}, {61, -40}, {64, 90}, {67, -90}, {70, 150}, {73, -100},
}

// DefaultEnergyPacks returns the fallback pack layout.
func DefaultEnergyPacks() []EnergyPack {
	out := make([]EnergyPack, 0, len(defaultPacks))
	for i, pv := range defaultPacks {
		out = append(out, EnergyPack{Name: fmt.Sprintf("Pack_%d", i+1), Cell: pv[0], Value: pv[1]})
	}
	return out
}

// LoadEnergyPacks reads `name,cell,value` lines from path. Malformed lines
// are skipped. A missing file is not an error: the default layout is
// returned instead.
func LoadEnergyPacks(path string) ([]EnergyPack, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultEnergyPacks(), nil
		}
		return nil, fmt.Errorf("open energy packs: %w", err)
	}
	defer f.Close()

	var packs []EnergyPack
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			continue
		}
		cell, err1 := strconv.Atoi(strings.TrimSpace(parts[1]))
		value, err2 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err1 != nil || err2 != nil {
			continue
		}
		packs = append(packs, EnergyPack{
			Name:  strings.TrimSpace(parts[0]),
			Cell:  cell,
			Value: value,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read energy packs: %w", err)
	}
	return packs, nil
}
