package domain

import "strings"

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Legacy identifier keys looked up in a lead's metadata, in order.
var LegacyIDKeys = []string{"original_id", "database_id", "real_id"}

// DerivedBudget is the midpoint when both bounds exist, otherwise whichever is set.
func DerivedBudget(min, max *float64) *float64 {
	switch {
	case min != nil && max != nil:
		mid := (*min + *max) / 2
		return &mid
	case min != nil:
		v := *min
		return &v
	case max != nil:
		v := *max
		return &v
	default:
		return nil
	}
}

// PriorityLabel turns the three valued interest level into the label shown
// on funnel cards. Unknown or missing levels read as medium.
func PriorityLabel(interest *string) string {
	if interest == nil {
		return "media"
	}
	switch strings.ToLower(strings.TrimSpace(*interest)) {
	case "high", "alto", "alta":
		return "alta"
	case "low", "bajo", "baja":
		return "baja"
	default:
		return "media"
	}
}

// BucketFor decides the funnel column of a lead. Unrecognized stages fall back
// to new; a closed status always buckets as closed.
func BucketFor(stage, status string) Stage {
	bucket, ok := NormalizeStage(stage)
	if !ok {
		bucket = StageNew
	}
	if strings.EqualFold(strings.TrimSpace(status), StatusClosed) {
		bucket = StageClosed
	}
	return bucket
}
