package ws

import "encoding/json"

// Message is the wire envelope for every event in both namespaces.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound payload shapes.
type CreateRoomPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomMessagePayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type GeneralMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// decode re-marshals a loosely typed payload into dst.
func decode(payload any, dst any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}
