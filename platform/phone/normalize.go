// Package phone normalizes contact phone numbers.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "MX"

// NormalizeE164 formats input as E.164 using region for numbers without a
// country prefix. Unparseable or invalid numbers are returned trimmed.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizePtr is NormalizeE164 for optional fields.
func NormalizePtr(input *string, region string) *string {
	if input == nil {
		return nil
	}
	out := NormalizeE164(*input, region)
	return &out
}
