package domain

type (
	RoomID string
	PeerID string
)

type Room struct {
	ID RoomID
}

// PlayerState is the authoritative playback snapshot of a room.
// Media stays nil until the first set-media action.
type PlayerState struct {
	Media    *string `json:"media"`
	Playing  bool    `json:"playing"`
	Position float64 `json:"position"`
}
