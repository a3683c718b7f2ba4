package orderupdate

import (
	"encoding/json"
	"fmt"
)

// updateEnvelope wraps one order event on the wire:
//
//	{"s": "ok", "d": { ... order fields ... }}
type updateEnvelope struct {
	Status string          `json:"s"`
	Data   json.RawMessage `json:"d"`
}

// ParseUpdate decodes a single order update message
func ParseUpdate(data []byte) (*OrderUpdate, error) {
	var env updateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode order update: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("order update has no payload")
	}

	var update OrderUpdate
	if err := json.Unmarshal(env.Data, &update); err != nil {
		return nil, fmt.Errorf("failed to decode order update payload: %w", err)
	}
	if update.ID == "" {
		return nil, fmt.Errorf("order update has empty order id")
	}
	return &update, nil
}

// SplitBatch splits one socket delivery, a JSON array of order update
// messages, into its elements
func SplitBatch(data []byte) ([]json.RawMessage, error) {
	var batch []json.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode order update batch: %w", err)
	}
	return batch, nil
}
