package models

import (
	"strings"
	"time"
)

// Compliance is the derived periodic-inspection status of equipment. It is never stored.
type Compliance string

const (
	ComplianceUnknown      Compliance = "UNKNOWN"
	ComplianceNonCompliant Compliance = "NON_COMPLIANT"
	ComplianceDueSoon      Compliance = "DUE_SOON"
	ComplianceCompliant    Compliance = "COMPLIANT"
)

const (
	inspectionValidity = 365 * 24 * time.Hour
	dueSoonWindow      = 30 * 24 * time.Hour
)

// NextInspection is the date the next periodic inspection is due.
func NextInspection(last time.Time) time.Time {
	return last.Add(inspectionValidity)
}

// ComplianceStatus derives the status from the last inspection date:
// overdue is non-compliant, due within 30 days is due soon.
func ComplianceStatus(last *time.Time, now time.Time) Compliance {
	if last == nil || last.IsZero() {
		return ComplianceUnknown
	}
	delta := NextInspection(*last).Sub(now)
	switch {
	case delta < 0:
		return ComplianceNonCompliant
	case delta < dueSoonWindow:
		return ComplianceDueSoon
	default:
		return ComplianceCompliant
	}
}

// ParseLenientDate accepts "YYYY-MM-DD" followed by anything (e.g. a time part)
// and "DD/MM/YYYY". Anything else, including an empty string, yields nil.
func ParseLenientDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return &t
		}
		if t, err := time.Parse("02/01/2006", s[:10]); err == nil {
			return &t
		}
	}
	return nil
}
