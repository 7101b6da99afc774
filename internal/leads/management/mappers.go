package management

import (
	"fmt"
	"strings"

	"inmo_crm_backend/internal/leads/repository"
	"inmo_crm_backend/internal/leads/transport"
	"inmo_crm_backend/platform/phone"
)

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	zones := lead.PreferredZones
	if zones == nil {
		zones = []string{}
	}
	metadata := lead.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return transport.LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Status:         lead.Status,
		Stage:          lead.Stage,
		AgentID:        lead.AgentID,
		BudgetMin:      lead.BudgetMin,
		BudgetMax:      lead.BudgetMax,
		PropertyType:   lead.PropertyType,
		PreferredZones: zones,
		InterestLevel:  lead.InterestLevel,
		Source:         lead.Source,
		Notes:          lead.Notes,
		Metadata:       metadata,
		ContactCount:   lead.ContactCount,
		LastContactAt:  lead.LastContactAt,
		NextContactAt:  lead.NextContactAt,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalLower(s string) *string {
	return optional(strings.ToLower(s))
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}

func optionalPhone(s, region string) *string {
	return optional(phone.NormalizeE164(s, region))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cleanZones(zones []string) []string {
	out := make([]string, 0, len(zones))
	seen := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		z = strings.TrimSpace(z)
		key := strings.ToLower(z)
		if z == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, z)
	}
	return out
}

// metadataString reads a scalar metadata value as text. JSON numbers decode
// as float64, so integral values are printed without a decimal point.
func metadataString(meta map[string]any, key string) (string, bool) {
	raw, ok := meta[key]
	if !ok || raw == nil {
		return "", false
	}
	var value string
	switch v := raw.(type) {
	case string:
		value = strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			value = fmt.Sprintf("%d", int64(v))
		} else {
			value = fmt.Sprintf("%v", v)
		}
	case int, int64, int32:
		value = fmt.Sprintf("%d", v)
	default:
		return "", false
	}
	return value, value != ""
}
