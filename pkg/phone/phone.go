package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to interpret numbers entered without a country
// prefix. The platform launches in Spain first.
const DefaultRegion = "ES"

// Normalize parses a phone number and returns it in E.164 format
// (+34600111222). Numbers without a country prefix are interpreted in the
// given region, falling back to DefaultRegion.
func Normalize(phone, region string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// IsMobile reports whether an E.164 number is a mobile line. SMS codes can
// only be delivered to mobile numbers.
func IsMobile(e164 string) bool {
	parsed, err := phonenumbers.Parse(e164, "ZZ")
	if err != nil {
		return false
	}
	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	default:
		return false
	}
}

// Region returns the ISO region for an E.164 number
func Region(e164 string) (string, error) {
	parsed, err := phonenumbers.Parse(e164, "ZZ")
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number (must include country code): %w", err)
	}
	region := phonenumbers.GetRegionCodeForNumber(parsed)
	if region == "ZZ" || region == "" {
		return "", fmt.Errorf("unable to determine country code")
	}
	return region, nil
}
