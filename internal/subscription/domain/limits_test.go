package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLimitsCatalogLoads(t *testing.T) {
	catalog, err := DefaultLimitsCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Limits)
}

func TestValidateLimitsBag(t *testing.T) {
	catalog, err := DefaultLimitsCatalog()
	require.NoError(t, err)

	cases := []struct {
		name    string
		body    string
		badKeys []string
	}{
		{name: "valid", body: `{"max_users": 5, "email_reminders": true, "support_level": "priority"}`},
		{name: "empty", body: `{}`},
		{name: "below min", body: `{"max_users": 0}`, badKeys: []string{"max_users"}},
		{name: "fraction", body: `{"max_properties": 2.5}`, badKeys: []string{"max_properties"}},
		{name: "wrong kinds", body: `{"email_reminders": "yes", "support_level": "vip"}`, badKeys: []string{"email_reminders", "support_level"}},
		{name: "unknown", body: `{"max_spaceships": 1}`, badKeys: []string{"max_spaceships"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var bag map[string]any
			require.NoError(t, json.Unmarshal([]byte(tc.body), &bag))

			err := catalog.Validate(bag)
			if len(tc.badKeys) == 0 {
				assert.NoError(t, err)
				return
			}
			var limitErr *LimitError
			require.ErrorAs(t, err, &limitErr)
			for _, key := range tc.badKeys {
				assert.Contains(t, limitErr.Problems, key)
			}
			assert.Len(t, limitErr.Problems, len(tc.badKeys))
		})
	}
}

func TestParseLimitsCatalogRejectsBadEntries(t *testing.T) {
	_, err := ParseLimitsCatalog([]byte("limits:\n  - key: tier\n    kind: enum\n"))
	assert.Error(t, err)

	_, err = ParseLimitsCatalog([]byte("limits:\n  - key: a\n    kind: number\n  - key: a\n    kind: bool\n"))
	assert.Error(t, err)
}
