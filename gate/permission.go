package gate

import "strings"

// Permission is "resource:action", e.g. "chantier:update".
// Either side may be the wildcard "*".
type Permission string

const (
	Wildcard      = "*"
	PermissionAll Permission = "*:*"
)

// NewPermission builds a permission from resource and action.
func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Parse splits p into resource and action. Malformed values return empty strings.
func (p Permission) Parse() (resource string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested.
// "*:*" grants everything, "materiel:*" every action on materiel and
// "*:view" the view action on every resource.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	resOK := res == Wildcard || res == reqRes
	actOK := string(act) == Wildcard || act == reqAct
	return resOK && actOK
}
