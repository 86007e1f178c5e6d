package catalog

// AbilityCategory groups abilities by their role in a kit. Every kit carries
// exactly one ability per category.
type AbilityCategory string

const (
	Offensive AbilityCategory = "offensive"
	Defensive AbilityCategory = "defensive"
	Movement  AbilityCategory = "movement"
	Control   AbilityCategory = "control"
)

// Ability is the immutable metadata for an active skill. The engine keys its
// handler table by Name.
type Ability struct {
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Category     AbilityCategory `json:"category"`
	BaseCooldown int             `json:"base_cooldown"`
	EnergyCost   int             `json:"energy_cost"`
	Symbol       string          `json:"symbol"`
	Description  string          `json:"description"`
}

// Ability names. These are the canonical ids used by the engine dispatch
// table, cooldown maps and the descuento_<ability> perk ids.
const (
	Sabotaje            = "sabotaje"
	BombaEnergetica     = "bomba_energetica"
	Robo                = "robo"
	Tsunami             = "tsunami"
	FugaDeEnergia       = "fuga_de_energia"
	EscudoTotal         = "escudo_total"
	Curacion            = "curacion"
	Invisibilidad       = "invisibilidad"
	Barrera             = "barrera"
	TransferenciaDeFase = "transferencia_de_fase"
	Cohete              = "cohete"
	IntercambioForzado  = "intercambio_forzado"
	Retroceso           = "retroceso"
	ReboteControlado    = "rebote_controlado"
	DadoPerfecto        = "dado_perfecto"
	MinaDeEnergia       = "mina_de_energia"
	DobleTurno          = "doble_turno"
	Caos                = "caos"
	BloqueoEnergetico   = "bloqueo_energetico"
	SobrecargaInestable = "sobrecarga_inestable"
	HilosEspectrales    = "hilos_espectrales"
	TironDeCadenas      = "tiron_de_cadenas"
	ControlTotal        = "control_total"
	TraspasoDeDolor     = "traspaso_de_dolor"
)

var abilities = map[string]Ability{
	Sabotaje:            {Name: Sabotaje, Title: "Sabotaje", Category: Offensive, BaseCooldown: 4, EnergyCost: 40, Symbol: "⚔️", Description: "The target loses their next turn"},
	BombaEnergetica:     {Name: BombaEnergetica, Title: "Bomba Energética", Category: Offensive, BaseCooldown: 5, EnergyCost: 45, Symbol: "💥", Description: "Players within 3 cells lose 75 energy"},
	Robo:                {Name: Robo, Title: "Robo", Category: Offensive, BaseCooldown: 6, EnergyCost: 40, Symbol: "🎭", Description: "Steal 50-150 energy from the richest opponent"},
	Tsunami:             {Name: Tsunami, Title: "Tsunami", Category: Offensive, BaseCooldown: 5, EnergyCost: 45, Symbol: "🌊", Description: "Push every other player 3 cells back"},
	FugaDeEnergia:       {Name: FugaDeEnergia, Title: "Fuga de Energía", Category: Offensive, BaseCooldown: 4, EnergyCost: 35, Symbol: "🩸", Description: "The target leaks 25 energy per turn for 3 turns"},
	EscudoTotal:         {Name: EscudoTotal, Title: "Escudo Total", Category: Defensive, BaseCooldown: 7, EnergyCost: 35, Symbol: "🛡️", Description: "Immune to all damage for 3 rounds"},
	Curacion:            {Name: Curacion, Title: "Curación", Category: Defensive, BaseCooldown: 6, EnergyCost: 40, Symbol: "🏥", Description: "Recover 150 energy instantly"},
	Invisibilidad:       {Name: Invisibilidad, Title: "Invisibilidad", Category: Defensive, BaseCooldown: 5, EnergyCost: 30, Symbol: "👻", Description: "Opponent abilities cannot target you for 2 turns"},
	Barrera:             {Name: Barrera, Title: "Barrera", Category: Defensive, BaseCooldown: 5, EnergyCost: 35, Symbol: "🔮", Description: "Reflects the next attack you receive, lasts 2 turns"},
	TransferenciaDeFase: {Name: TransferenciaDeFase, Title: "Transferencia de Fase", Category: Defensive, BaseCooldown: 4, EnergyCost: 25, Symbol: "💨", Description: "Intangible against negative tiles on your next move"},
	Cohete:              {Name: Cohete, Title: "Cohete", Category: Movement, BaseCooldown: 3, EnergyCost: 30, Symbol: "🚀", Description: "Advance 3-7 cells immediately"},
	IntercambioForzado:  {Name: IntercambioForzado, Title: "Intercambio Forzado", Category: Movement, BaseCooldown: 6, EnergyCost: 35, Symbol: "🔄", Description: "Swap positions with any player"},
	Retroceso:           {Name: Retroceso, Title: "Retroceso", Category: Movement, BaseCooldown: 4, EnergyCost: 30, Symbol: "⏪", Description: "Push a player 5 cells back"},
	ReboteControlado:    {Name: ReboteControlado, Title: "Rebote Controlado", Category: Movement, BaseCooldown: 5, EnergyCost: 30, Symbol: "↩️", Description: "Step 2 cells back, then jump 9 forward"},
	DadoPerfecto:        {Name: DadoPerfecto, Title: "Dado Perfecto", Category: Control, BaseCooldown: 4, EnergyCost: 30, Symbol: "🎯", Description: "Choose your next die result (1-6)"},
	MinaDeEnergia:       {Name: MinaDeEnergia, Title: "Mina de Energía", Category: Control, BaseCooldown: 4, EnergyCost: 35, Symbol: "💣", Description: "Place a trap on your current cell"},
	DobleTurno:          {Name: DobleTurno, Title: "Doble Turno", Category: Control, BaseCooldown: 7, EnergyCost: 40, Symbol: "⚡", Description: "Roll two dice on your next turn"},
	Caos:                {Name: Caos, Title: "Caos", Category: Control, BaseCooldown: 6, EnergyCost: 45, Symbol: "🎪", Description: "Every player moves randomly"},
	BloqueoEnergetico:   {Name: BloqueoEnergetico, Title: "Bloqueo Energético", Category: Control, BaseCooldown: 5, EnergyCost: 35, Symbol: "🚫", Description: "The target cannot gain energy for 2 rounds"},
	SobrecargaInestable: {Name: SobrecargaInestable, Title: "Sobrecarga Inestable", Category: Control, BaseCooldown: 4, EnergyCost: 50, Symbol: "🎲", Description: "Pay 50 now; next turn gain -25, +75 or +150"},
	HilosEspectrales:    {Name: HilosEspectrales, Title: "Hilos Espectrales", Category: Control, BaseCooldown: 5, EnergyCost: 30, Symbol: "🕸️", Description: "Bind a player within 6 cells for 4 turns"},
	TironDeCadenas:      {Name: TironDeCadenas, Title: "Tirón de Cadenas", Category: Movement, BaseCooldown: 3, EnergyCost: 25, Symbol: "⛓️", Description: "Pull your bound target 3 cells toward you"},
	ControlTotal:        {Name: ControlTotal, Title: "Control Total", Category: Offensive, BaseCooldown: 6, EnergyCost: 50, Symbol: "🎮", Description: "Force your bound target's next die"},
	TraspasoDeDolor:     {Name: TraspasoDeDolor, Title: "Traspaso de Dolor", Category: Defensive, BaseCooldown: 4, EnergyCost: 35, Symbol: "🔀", Description: "Redirect half of your next damage to your bound target"},
}

// AbilityByName returns the ability metadata for a canonical id.
func AbilityByName(name string) (Ability, bool) {
	a, ok := abilities[name]
	return a, ok
}

// Abilities returns a copy of the full ability catalog.
func Abilities() []Ability {
	out := make([]Ability, 0, len(abilities))
	for _, a := range abilities {
		out = append(out, a)
	}
	return out
}
