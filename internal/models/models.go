// Package models holds the gorm entities of the site-compliance domain.
package models

// CompanyScoped is implemented by every entity that belongs to a tenant.
// Authorization policies compare it with the caller's company.
type CompanyScoped interface {
	GetCompanyID() uint
}

// All lists every model in dependency order, for AutoMigrate and test setup.
func All() []any {
	return []any{
		&Company{}, &User{}, &CompanyDocument{},
		&Chantier{}, &Materiel{},
		&Rapport{}, &RapportImage{}, &Inspection{},
		&PPSPS{}, &PlanPrevention{}, &PIC{}, &PermisFeu{},
		&ChantierDocument{}, &Task{},
		&DUERP{}, &DUERPLigne{},
	}
}
