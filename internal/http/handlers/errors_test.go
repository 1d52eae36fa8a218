package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"orghub/internal/service"
)

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"not a member", service.ErrNotAMember, http.StatusForbidden},
		{"insufficient permission", service.ErrInsufficientPermission, http.StatusForbidden},
		{"remove self", service.ErrCannotRemoveSelf, http.StatusForbidden},
		{"modify self", service.ErrCannotModifySelf, http.StatusForbidden},
		{"member not found", service.ErrMemberNotFound, http.StatusNotFound},
		{"org not found", service.ErrOrgNotFound, http.StatusNotFound},
		{"name exists", service.ErrOrgNameExists, http.StatusConflict},
		{"already member", service.ErrAlreadyMember, http.StatusConflict},
		{"invalid role", service.ErrInvalidRole, http.StatusBadRequest},
		{"bad cursor", service.ErrInvalidPageCursor, http.StatusBadRequest},
		{"last owner", service.ErrLastOwner, http.StatusBadRequest},
		{"orphaned users", &service.OrphanedUsersError{UserIDs: []string{"u1"}}, http.StatusBadRequest},
		{"role configuration", service.ErrRoleConfiguration, http.StatusInternalServerError},
		{"integration failure", service.ErrIntegrationFailure, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondServiceErrorMatchesWrappedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := errors.Join(errors.New("context"), service.ErrOrgNotFound)
	respondServiceError(c, wrapped)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondServiceErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondServiceError(c, errors.New("dsn=user:pass@tcp"))
	assert.NotContains(t, w.Body.String(), "dsn=")
	assert.Contains(t, w.Body.String(), "unexpected error")
}
