package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// TopicCatalog carries catalog change notifications.
const TopicCatalog = "catalog"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewMessage encodes a message for the wire.
func NewMessage(action string, payload interface{}) []byte {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return nil
	}
	return data
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(message string) []byte {
	return NewMessage("error", map[string]string{"message": message})
}
