package causal

import (
	"github.com/google/uuid"
)

// NewRunID returns a time-ordered identifier for one engine or analysis run,
// a UUIDv7 falling back to v4.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
