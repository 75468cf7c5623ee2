package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinichq/clinic-api/internal/model"
)

func TestCanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name      string
		principal model.Principal
		ownerID   *uuid.UUID
		want      bool
	}{
		{"admin always", model.Principal{UserID: other, Role: model.RoleAdmin}, &owner, true},
		{"secretary always", model.Principal{UserID: other, Role: model.RoleSecretary}, &owner, true},
		{"owning doctor", model.Principal{UserID: owner, Role: model.RoleDoctor}, &owner, true},
		{"other doctor", model.Principal{UserID: other, Role: model.RoleDoctor}, &owner, false},
		{"doctor on unassigned record", model.Principal{UserID: owner, Role: model.RoleDoctor}, nil, false},
		{"admin on unassigned record", model.Principal{UserID: other, Role: model.RoleAdmin}, nil, true},
		{"unknown role", model.Principal{UserID: owner, Role: "patient"}, &owner, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.principal, tc.ownerID))
		})
	}
}

func TestOwns(t *testing.T) {
	id := uuid.New()
	assert.True(t, Owns(model.Principal{UserID: id, Role: model.RoleDoctor}, id))
	assert.False(t, Owns(model.Principal{UserID: uuid.New(), Role: model.RoleDoctor}, id))
}
