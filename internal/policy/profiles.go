// Package policy binds the gate authorization layer to the chantier domain: role
// profiles, the database-backed profile resolver and the tenant ownership policy.
package policy

import (
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/internal/models"
)

// Resources guarded by the gate.
const (
	ResChantier        = "chantier"
	ResRapport         = "rapport"
	ResInspection      = "inspection"
	ResDocument        = "document"
	ResPIC             = "pic"
	ResPermisFeu       = "permis_feu"
	ResTask            = "task"
	ResPlanPrevention  = "plan_prevention"
	ResPPSPS           = "ppsps"
	ResMateriel        = "materiel"
	ResDUERP           = "duerp"
	ResUser            = "user"
	ResCompany         = "company"
	ResCompanyDocument = "company_document"
	ResDashboard       = "dashboard"
)

// Resources lists every guarded resource.
var Resources = []string{
	ResChantier, ResRapport, ResInspection, ResDocument, ResPIC, ResPermisFeu, ResTask,
	ResPlanPrevention, ResPPSPS, ResMateriel, ResDUERP, ResUser, ResCompany,
	ResCompanyDocument, ResDashboard,
}

var readOnly = []gate.Permission{
	gate.NewPermission(gate.Wildcard, gate.ActionView),
	gate.NewPermission(gate.Wildcard, gate.ActionList),
	gate.NewPermission(gate.Wildcard, gate.ActionExport),
}

func writes(resources []string, actions ...gate.Action) []gate.Permission {
	var out []gate.Permission
	for _, r := range resources {
		for _, a := range actions {
			out = append(out, gate.NewPermission(r, a))
		}
	}
	return out
}

var profiles = map[string]*gate.RoleProfile{
	models.RoleAdmin: gate.NewRoleProfile(models.RoleAdmin, gate.PermissionAll),

	// Site managers run everything except accounts and company settings.
	models.RoleConducteur: gate.NewRoleProfile(models.RoleConducteur, append(readOnly,
		writes([]string{
			ResChantier, ResRapport, ResInspection, ResDocument, ResPIC, ResPermisFeu, ResTask,
			ResPlanPrevention, ResPPSPS, ResMateriel, ResDUERP, ResCompanyDocument,
		}, gate.ActionCreate, gate.ActionUpdate, gate.ActionDelete)...)...),

	// Foremen record what happens on site but do not open, close or delete sites.
	models.RoleChefChantier: gate.NewRoleProfile(models.RoleChefChantier, append(append(readOnly,
		writes([]string{ResRapport, ResInspection, ResDocument, ResPIC, ResPermisFeu, ResTask, ResMateriel},
			gate.ActionCreate, gate.ActionUpdate)...),
		writes([]string{ResRapport, ResTask}, gate.ActionDelete)...)...),

	models.RoleLecteur: gate.NewRoleProfile(models.RoleLecteur, readOnly...),
}

// ProfileFor returns the profile of role, or nil for an unknown role.
func ProfileFor(role string) gate.Profile {
	p, ok := profiles[role]
	if !ok {
		return nil
	}
	return p
}
