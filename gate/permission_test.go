package gate_test

import (
	"testing"

	"github.com/diewo77/go-chantiers/gate"
)

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"*:*", "chantier:delete", true},
		{"chantier:view", "chantier:view", true},
		{"chantier:view", "chantier:update", false},
		{"materiel:*", "materiel:create", true},
		{"materiel:*", "chantier:create", false},
		{"*:view", "duerp:view", true},
		{"*:view", "duerp:update", false},
		{"broken", "chantier:view", false},
		{"*:view", "broken", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.granted)+"->"+string(tt.requested), func(t *testing.T) {
			if got := tt.granted.Matches(tt.requested); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.NewPermission("ppsps", gate.ActionExport).Parse()
	if res != "ppsps" || act != gate.ActionExport {
		t.Fatalf("got %q %q", res, act)
	}
	if res, act := gate.Permission("nocolon").Parse(); res != "" || act != "" {
		t.Fatalf("expected empty parse, got %q %q", res, act)
	}
}

func TestRoleProfile_Permissions(t *testing.T) {
	p := gate.NewRoleProfile("conducteur", "tasks:*", "chantier:view", "chantier:view")
	perms := p.Permissions()
	if len(perms) != 2 || perms[0] != "chantier:view" || perms[1] != "tasks:*" {
		t.Fatalf("unexpected permissions %v", perms)
	}
	if !p.HasPermission("tasks:delete") {
		t.Fatal("expected tasks:* to cover delete")
	}
}
