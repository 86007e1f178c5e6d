package catalog

import (
	"sort"
	"strings"
)

// PerkTier is the rarity band a perk is drawn from.
type PerkTier string

const (
	TierBasic PerkTier = "basic"
	TierMid   PerkTier = "mid"
	TierHigh  PerkTier = "high"
)

// Perk is the immutable metadata for a passive modifier. RequiresAbility
// restricts a perk to players whose kit carries the named ability.
type Perk struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Tier            PerkTier `json:"tier"`
	RequiresAbility string   `json:"requires_ability,omitempty"`
	Description     string   `json:"description"`
}

// Perk ids consulted by the engine's hook points.
const (
	RecargaConstante      = "recarga_constante"
	RecompensaDeMina      = "recompensa_de_mina"
	ImpulsoInestable      = "impulso_inestable"
	Chatarrero            = "chatarrero"
	PresenciaIntimidante  = "presencia_intimidante"
	DescuentoHabilidad    = "descuento_habilidad"
	Maremoto              = "maremoto"
	AcumuladorDePM        = "acumulador_de_pm"
	RetrocesoBrutal       = "retroceso_brutal"
	Aislamiento           = "aislamiento"
	Amortiguacion         = "amortiguacion"
	EficienciaEnergetica  = "eficiencia_energetica"
	Anticipacion          = "anticipacion"
	RoboOportunista       = "robo_oportunista"
	EscudoDuradero        = "escudo_duradero"
	BombaFragmentacion    = "bomba_fragmentacion"
	SombraFugaz           = "sombra_fugaz"
	DadoCargado           = "dado_cargado"
	DesvioCinetico        = "desvio_cinetico"
	MaestroDelAzar        = "maestro_del_azar"
	MaestriaHabilidad     = "maestria_habilidad"
	UltimoAliento         = "ultimo_aliento"
	EnfriamientoRapido    = "enfriamiento_rapido"
	DrenajeColision       = "drenaje_colision"
	SabotajePersistente   = "sabotaje_persistente"
	descuentoPrefixString = "descuento_"
)

var perks = map[string]Perk{
	RecargaConstante:     {ID: RecargaConstante, Title: "Recarga Constante", Tier: TierBasic, Description: "Gain 10 energy at the start of each of your turns"},
	RecompensaDeMina:     {ID: RecompensaDeMina, Title: "Recompensa de Mina", Tier: TierBasic, RequiresAbility: MinaDeEnergia, Description: "Your mines refund half their damage to you"},
	ImpulsoInestable:     {ID: ImpulsoInestable, Title: "Impulso Inestable", Tier: TierBasic, Description: "Every roll gains +2 or -1 at random"},
	Chatarrero:           {ID: Chatarrero, Title: "Chatarrero", Tier: TierBasic, Description: "Gain 1 PM whenever a trap or negative pack hits you"},
	PresenciaIntimidante: {ID: PresenciaIntimidante, Title: "Presencia Intimidante", Tier: TierBasic, Description: "Players colliding into you lose 25 extra energy"},
	DescuentoHabilidad:   {ID: DescuentoHabilidad, Title: "Descuento de Habilidad", Tier: TierBasic, Description: "One of your abilities cools down one turn faster"},
	Maremoto:             {ID: Maremoto, Title: "Maremoto", Tier: TierBasic, RequiresAbility: Tsunami, Description: "Tsunami pushes 5 cells instead of 3"},
	AcumuladorDePM:       {ID: AcumuladorDePM, Title: "Acumulador de PM", Tier: TierBasic, Description: "Every PM gain yields 1 extra PM"},
	RetrocesoBrutal:      {ID: RetrocesoBrutal, Title: "Retroceso Brutal", Tier: TierBasic, RequiresAbility: Retroceso, Description: "Retroceso pushes 7 cells instead of 5"},

	Aislamiento:          {ID: Aislamiento, Title: "Aislamiento", Tier: TierMid, Description: "All energy losses reduced by 20%"},
	Amortiguacion:        {ID: Amortiguacion, Title: "Amortiguación", Tier: TierMid, Description: "Collision damage reduced by a third"},
	EficienciaEnergetica: {ID: EficienciaEnergetica, Title: "Eficiencia Energética", Tier: TierMid, Description: "Energy gains from packs and treasures +20%"},
	Anticipacion:         {ID: Anticipacion, Title: "Anticipación", Tier: TierMid, Description: "20% chance to dodge offensive abilities"},
	RoboOportunista:      {ID: RoboOportunista, Title: "Robo Oportunista", Tier: TierMid, RequiresAbility: Robo, Description: "Robo steals 30 extra energy"},
	EscudoDuradero:       {ID: EscudoDuradero, Title: "Escudo Duradero", Tier: TierMid, RequiresAbility: EscudoTotal, Description: "Your shields last one extra round"},
	BombaFragmentacion:   {ID: BombaFragmentacion, Title: "Bomba de Fragmentación", Tier: TierMid, RequiresAbility: BombaEnergetica, Description: "Bomba reaches 5 cells and pushes victims outward"},
	SombraFugaz:          {ID: SombraFugaz, Title: "Sombra Fugaz", Tier: TierMid, RequiresAbility: Invisibilidad, Description: "While invisible you also ignore collisions"},
	DadoCargado:          {ID: DadoCargado, Title: "Dado Cargado", Tier: TierMid, RequiresAbility: DadoPerfecto, Description: "Dado Perfecto also grants 20 energy"},
	DesvioCinetico:       {ID: DesvioCinetico, Title: "Desvío Cinético", Tier: TierMid, Description: "Forced movement against you is halved"},
	MaestroDelAzar:       {ID: MaestroDelAzar, Title: "Maestro del Azar", Tier: TierMid, RequiresAbility: Caos, Description: "Caos moves you twice as far"},

	MaestriaHabilidad:   {ID: MaestriaHabilidad, Title: "Maestría de Habilidad", Tier: TierHigh, Description: "Ability use awards 2 extra PM"},
	UltimoAliento:       {ID: UltimoAliento, Title: "Último Aliento", Tier: TierHigh, Description: "Survive one lethal hit with 50 energy and a shield"},
	EnfriamientoRapido:  {ID: EnfriamientoRapido, Title: "Enfriamiento Rápido", Tier: TierHigh, Description: "All cooldowns one turn shorter"},
	DrenajeColision:     {ID: DrenajeColision, Title: "Drenaje de Colisión", Tier: TierHigh, Description: "Collisions steal 50 energy from each unprotected victim"},
	SabotajePersistente: {ID: SabotajePersistente, Title: "Sabotaje Persistente", Tier: TierHigh, RequiresAbility: Sabotaje, Description: "Sabotaje pauses for 2 turns"},
}

// PerkByID resolves a perk id, including dynamic descuento_<ability> ids,
// which share the DescuentoHabilidad metadata.
func PerkByID(id string) (Perk, bool) {
	if p, ok := perks[id]; ok {
		return p, true
	}
	if ability, ok := DiscountAbility(id); ok {
		p := perks[DescuentoHabilidad]
		p.ID = id
		p.RequiresAbility = ability
		return p, true
	}
	return Perk{}, false
}

// PerksByTier returns the perk ids of one tier in stable order.
func PerksByTier(tier PerkTier) []Perk {
	var out []Perk
	for _, p := range perks {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DiscountPerkID builds the dynamic id that binds a cooldown discount to one
// concrete ability.
func DiscountPerkID(ability string) string {
	return descuentoPrefixString + ability
}

// DiscountAbility extracts the ability name from a dynamic discount perk id.
func DiscountAbility(id string) (string, bool) {
	if !strings.HasPrefix(id, descuentoPrefixString) || id == DescuentoHabilidad {
		return "", false
	}
	ability := strings.TrimPrefix(id, descuentoPrefixString)
	if _, ok := abilities[ability]; !ok {
		return "", false
	}
	return ability, true
}

// PerkPackTier is the purchasable pack band on the wire.
type PerkPackTier string

const (
	PackBasic        PerkPackTier = "basic"
	PackIntermediate PerkPackTier = "intermediate"
	PackAdvanced     PerkPackTier = "advanced"
)

// PackComposition describes how many offers a pack draws from each tier.
type PackComposition struct {
	Cost  int
	Draws map[PerkTier]int
}

var packCompositions = map[PerkPackTier]PackComposition{
	PackBasic:        {Cost: 4, Draws: map[PerkTier]int{TierBasic: 2}},
	PackIntermediate: {Cost: 8, Draws: map[PerkTier]int{TierMid: 2, TierBasic: 1}},
	PackAdvanced:     {Cost: 12, Draws: map[PerkTier]int{TierHigh: 2}},
}

// PackByTier returns the cost and draw plan for a pack tier.
func PackByTier(tier PerkPackTier) (PackComposition, bool) {
	c, ok := packCompositions[tier]
	return c, ok
}
