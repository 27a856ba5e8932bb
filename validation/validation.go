// Package validation collects field violations as translatable codes.
package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Violations maps a field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// add keeps the first violation reported for a field.
func (v Violations) add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required")
	}
}

// RequiredPtr flags a nil or blank optional value. Used on create where the field is mandatory.
func RequiredPtr(field string, value *string, v Violations) {
	if value == nil {
		v.add(field, "required")
		return
	}
	Required(field, *value, v)
}

func MaxLen(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, "too_long")
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil || !strings.Contains(value, "@") {
		v.add(field, "invalid_email")
	}
}

// OneOf accepts an empty value; pair it with Required when the field is mandatory.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.add(field, "invalid_value")
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v.add(field, "out_of_range")
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v.add(field, "out_of_range")
	}
}

// Coordinates checks an optional latitude/longitude pair.
func Coordinates(lat, lon *float64, v Violations) {
	if lat != nil {
		RangeFloat("latitude", *lat, -90, 90, v)
	}
	if lon != nil {
		RangeFloat("longitude", *lon, -180, 180, v)
	}
}
