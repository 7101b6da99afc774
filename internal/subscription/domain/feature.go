package domain

import "strings"

var featureLevels = map[string]bool{"basic": true, "standard": true, "advanced": true, "premium": true}

// FeatureLevel reads the UI feature level from module metadata. Core
// modules without an explicit level report "core".
func FeatureLevel(metadata map[string]any, isCore bool) string {
	for _, key := range []string{"featureLevel", "feature_level", "level"} {
		if v, ok := metadata[key].(string); ok {
			level := strings.ToLower(strings.TrimSpace(v))
			if featureLevels[level] {
				return level
			}
		}
	}
	if isCore {
		return "core"
	}
	return "standard"
}
