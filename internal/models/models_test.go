package models

import (
	"testing"
	"time"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestComplianceStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ago := func(days int) *time.Time {
		d := now.AddDate(0, 0, -days)
		return &d
	}
	tests := []struct {
		name string
		last *time.Time
		want Compliance
	}{
		{"never inspected", nil, ComplianceUnknown},
		{"zero date", &time.Time{}, ComplianceUnknown},
		{"400 days ago", ago(400), ComplianceNonCompliant},
		{"366 days ago", ago(366), ComplianceNonCompliant},
		{"due today", ago(365), ComplianceDueSoon},
		{"340 days ago", ago(340), ComplianceDueSoon},
		{"336 days ago", ago(336), ComplianceDueSoon},
		{"335 days ago", ago(335), ComplianceCompliant},
		{"300 days ago", ago(300), ComplianceCompliant},
		{"inspected today", ago(0), ComplianceCompliant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComplianceStatus(tt.last, now); got != tt.want {
				t.Errorf("ComplianceStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComplianceStatus_OneSecondLate(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := NextInspection(last)
	if got := ComplianceStatus(&last, due.Add(time.Second)); got != ComplianceNonCompliant {
		t.Fatalf("expected NON_COMPLIANT one second after due date, got %s", got)
	}
}

func TestParseLenientDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"2025-03-04", day("2025-03-04")},
		{"2025-03-04T10:30:00Z", day("2025-03-04")},
		{" 2025-03-04 08:00 ", day("2025-03-04")},
		{"04/03/2025", day("2025-03-04")},
		{"", nil},
		{"hier", nil},
		{"2025-13-45", nil},
		{"2025-3-4", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseLenientDate(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseLenientDate(%q) = %v, want nil", tt.in, got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("ParseLenientDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaterielView(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	m := Materiel{Nom: "Nacelle", DateDerniereVGP: day("2024-07-01")}
	v := m.View(now)
	if v.StatutVGP != ComplianceDueSoon {
		t.Errorf("StatutVGP = %s, want DUE_SOON", v.StatutVGP)
	}
	if v.ProchaineVGP == nil || !v.ProchaineVGP.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ProchaineVGP = %v", v.ProchaineVGP)
	}

	empty := Materiel{Nom: "Bétonnière"}.View(now)
	if empty.StatutVGP != ComplianceUnknown || empty.ProchaineVGP != nil {
		t.Errorf("unexpected view for uninspected equipment: %+v", empty)
	}
}

func TestCompanyScoped(t *testing.T) {
	cid := uint(7)
	scoped := []CompanyScoped{
		&Chantier{CompanyID: 7},
		&Materiel{CompanyID: 7},
		&DUERP{CompanyID: 7},
		&CompanyDocument{CompanyID: 7},
		&User{CompanyID: &cid},
		&Company{ID: 7},
	}
	for _, s := range scoped {
		if s.GetCompanyID() != 7 {
			t.Errorf("%T.GetCompanyID() = %d, want 7", s, s.GetCompanyID())
		}
	}
	if (&User{}).GetCompanyID() != 0 {
		t.Error("user without company should report 0")
	}
}
