package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SeedRequestMessage asks a worker to run one bulk load of the catalog.
type SeedRequestMessage struct {
	RequestID   string    `json:"request_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewSeedRequestMessage(requestID string) *SeedRequestMessage {
	return &SeedRequestMessage{
		RequestID:   requestID,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *SeedRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SeedRequestMessageFromJSON decodes a message; a missing request ID is an error.
func SeedRequestMessageFromJSON(data []byte) (*SeedRequestMessage, error) {
	var msg SeedRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestID == "" {
		return nil, errors.New("seed request without request_id")
	}
	return &msg, nil
}
