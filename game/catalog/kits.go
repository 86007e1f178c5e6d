package catalog

import "fmt"

// Kit is a fixed loadout of four abilities assigned at match start.
type Kit struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Abilities []string `json:"abilities"`
}

// Kit ids.
const (
	KitAsalto     = "asalto"
	KitTitan      = "titan"
	KitFantasma   = "fantasma"
	KitVelocista  = "velocista"
	KitAzar       = "azar"
	KitTitiritero = "titiritero"
)

var kits = []Kit{
	{ID: KitAsalto, Title: "Asalto", Abilities: []string{Sabotaje, BombaEnergetica, Robo, Retroceso}},
	{ID: KitTitan, Title: "Titán", Abilities: []string{EscudoTotal, Curacion, Barrera, BloqueoEnergetico}},
	{ID: KitFantasma, Title: "Fantasma", Abilities: []string{Invisibilidad, TransferenciaDeFase, FugaDeEnergia, MinaDeEnergia}},
	{ID: KitVelocista, Title: "Velocista", Abilities: []string{Cohete, ReboteControlado, IntercambioForzado, DobleTurno}},
	{ID: KitAzar, Title: "Azar", Abilities: []string{Caos, DadoPerfecto, SobrecargaInestable, Tsunami}},
	{ID: KitTitiritero, Title: "Titiritero", Abilities: []string{HilosEspectrales, TironDeCadenas, ControlTotal, TraspasoDeDolor}},
}

// Kits returns the six kits in their canonical order.
func Kits() []Kit {
	out := make([]Kit, len(kits))
	copy(out, kits)
	return out
}

// KitByID looks up a kit by id. An empty id yields the first kit.
func KitByID(id string) (Kit, error) {
	if id == "" {
		return kits[0], nil
	}
	for _, k := range kits {
		if k.ID == id {
			return k, nil
		}
	}
	return Kit{}, fmt.Errorf("unknown kit %q", id)
}

// KitAbilities resolves a kit id to its four ability definitions.
func KitAbilities(id string) ([]Ability, error) {
	k, err := KitByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]Ability, 0, len(k.Abilities))
	for _, name := range k.Abilities {
		a, ok := abilities[name]
		if !ok {
			return nil, fmt.Errorf("kit %q references unknown ability %q", id, name)
		}
		out = append(out, a)
	}
	return out, nil
}
