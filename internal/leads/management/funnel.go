package management

import (
	"context"
	"strings"

	"inmo_crm_backend/internal/leads/domain"
	"inmo_crm_backend/internal/leads/ports"
	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/internal/leads/transport"

	"github.com/google/uuid"
)

// GetSalesFunnelWithAgents builds the kanban board of a tenant. Any failure
// yields the four empty columns with Degraded set.
func (s *Service) GetSalesFunnelWithAgents(ctx context.Context, tenantID uuid.UUID) transport.FunnelResponse {
	board := emptyFunnel()

	leads, err := s.repo.ListAllByTenant(ctx, tenantID)
	if err != nil {
		s.logger(ctx).Degraded("leads.GetSalesFunnelWithAgents.leads", err)
		board.Degraded = true
		return board
	}

	members, err := s.loadMembers(ctx, tenantID, leads)
	if err != nil {
		s.logger(ctx).Degraded("leads.GetSalesFunnelWithAgents.agents", err)
		empty := emptyFunnel()
		empty.Degraded = true
		return empty
	}

	for _, lead := range leads {
		bucket := domain.BucketFor(lead.Stage, lead.Status)
		if !domain.IsFunnelStage(bucket) {
			continue
		}
		board.Columns[string(bucket)] = append(board.Columns[string(bucket)], toFunnelLead(lead, bucket, members))
	}

	return board
}

func emptyFunnel() transport.FunnelResponse {
	columns := make(map[string][]transport.FunnelLead, len(domain.FunnelStages))
	order := make([]string, 0, len(domain.FunnelStages))
	for _, stage := range domain.FunnelStages {
		columns[string(stage)] = []transport.FunnelLead{}
		order = append(order, string(stage))
	}
	return transport.FunnelResponse{Columns: columns, Order: order}
}

// loadMembers fetches every distinct assigned agent in one call.
func (s *Service) loadMembers(ctx context.Context, tenantID uuid.UUID, leads []repository.Lead) (map[uuid.UUID]transport.FunnelMember, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, lead := range leads {
		if lead.AgentID == nil {
			continue
		}
		if _, ok := seen[*lead.AgentID]; ok {
			continue
		}
		seen[*lead.AgentID] = struct{}{}
		ids = append(ids, *lead.AgentID)
	}

	members := make(map[uuid.UUID]transport.FunnelMember, len(ids))
	if len(ids) == 0 || s.agents == nil {
		return members, nil
	}

	records, err := s.agents.GetAgentsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for id, record := range records {
		members[id] = toFunnelMember(record)
	}
	return members, nil
}

func toFunnelMember(record ports.AgentRecord) transport.FunnelMember {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		name = record.Email
	}

	avatar := record.AvatarURL
	if avatar == nil || strings.TrimSpace(*avatar) == "" {
		avatar = nil
		if v, ok := record.Metadata["avatar"].(string); ok && strings.TrimSpace(v) != "" {
			avatar = &v
		}
	}

	return transport.FunnelMember{ID: record.ID, Name: name, Avatar: avatar}
}

func toFunnelLead(lead repository.Lead, bucket domain.Stage, members map[uuid.UUID]transport.FunnelMember) transport.FunnelLead {
	budget := domain.DerivedBudget(lead.BudgetMin, lead.BudgetMax)
	priority := domain.PriorityLabel(lead.InterestLevel)

	meta := make(map[string]any, len(lead.Metadata)+8)
	for k, v := range lead.Metadata {
		meta[k] = v
	}
	meta["status"] = lead.Status
	meta["priority"] = priority
	meta["contactCount"] = lead.ContactCount
	meta["preferredZones"] = zonesOrEmpty(lead.PreferredZones)
	if budget != nil {
		meta["budget"] = *budget
	}
	if lead.PropertyType != nil {
		meta["propertyType"] = *lead.PropertyType
	}
	if lead.Source != nil {
		meta["source"] = *lead.Source
	}
	if lead.LastContactAt != nil {
		meta["lastContactAt"] = *lead.LastContactAt
	}
	if lead.NextContactAt != nil {
		meta["nextContactAt"] = *lead.NextContactAt
	}

	out := transport.FunnelLead{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Stage:     string(bucket),
		Budget:    budget,
		Priority:  priority,
		Metadata:  meta,
		Members:   []transport.FunnelMember{},
		CreatedAt: lead.CreatedAt,
	}
	if lead.AgentID != nil {
		if member, ok := members[*lead.AgentID]; ok {
			out.Members = append(out.Members, member)
		}
	}
	return out
}

func zonesOrEmpty(zones []string) []string {
	if zones == nil {
		return []string{}
	}
	return zones
}
