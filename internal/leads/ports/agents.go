// Package ports declares what the leads module needs from other modules.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// AgentRecord is the raw agent data the funnel turns into a member card.
type AgentRecord struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL *string
	Metadata  map[string]any
	Active    bool
}

// AgentDirectory looks up agents of one tenant in a single round trip.
type AgentDirectory interface {
	GetAgentsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]AgentRecord, error)
}
