package plugin

import (
	"testing"

	"github.com/ngipak/infodesa/pkg/models"
)

func TestRouteProtected(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		want  bool
	}{
		{"public", Route{Method: "GET", Path: "/catalog"}, false},
		{"signed in", Route{Method: "POST", Path: "/", SignedIn: true}, true},
		{"role", Route{Method: "GET", Path: "/admin", Role: models.RoleEditor}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.route.Protected(); got != tt.want {
				t.Errorf("Protected() = %v, want %v", got, tt.want)
			}
		})
	}
}
