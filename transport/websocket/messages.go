package websocket

import "encoding/json"

// Inbound actions a client may send.
const (
	ActionAuthenticate     = "authenticate"
	ActionHeartbeat        = "presence_heartbeat"
	ActionCreateRoom       = "create_room"
	ActionJoinRoom         = "join_room"
	ActionLeaveRoom        = "leave_room"
	ActionStartGame        = "start_game"
	ActionRollDie          = "roll_die"
	ActionResolveAck       = "resolve_ack"
	ActionUseAbility       = "use_ability"
	ActionBuyPerkPack      = "buy_perk_pack"
	ActionSelectPerk       = "select_perk"
	ActionCancelPerkOffer  = "cancel_perk_offer"
	ActionPerkPrices       = "request_perk_prices"
	ActionSendChat         = "send_chat"
	ActionRequestRematch   = "request_rematch"
	ActionCancelRematch    = "cancel_rematch"
	ActionLeaveRematch     = "leave_rematch_queue"
)

// Inbound is the envelope every client message arrives in. Fields beyond
// Action are read per action.
type Inbound struct {
	Action       string `json:"action"`
	Username     string `json:"username,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	KitID        string `json:"kit_id,omitempty"`
	AbilityIdx   int    `json:"ability_idx,omitempty"`
	Target       string `json:"target,omitempty"`
	Tier         string `json:"tier,omitempty"`
	PerkID       string `json:"perk_id,omitempty"`
	ExpectedCost int    `json:"expected_cost,omitempty"`
	Text         string `json:"text,omitempty"`
}

// Outbound is the envelope every server message leaves in.
type Outbound struct {
	Event  string `json:"event"`
	RoomID string `json:"room_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func encode(event, roomID string, data any) ([]byte, error) {
	return json.Marshal(Outbound{Event: event, RoomID: roomID, Data: data})
}
