package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/seatplan-api/internal/models"
	appErrors "github.com/noah-isme/seatplan-api/pkg/errors"
)

type authServiceMock struct {
	lastReq models.LoginRequest
	resp    *models.LoginResponse
	err     error
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{resp: &models.LoginResponse{AccessToken: "token", User: models.UserInfo{Username: "admin", Role: models.RoleAdmin}}}
	handler := NewAuthHandler(mockSvc)

	c, w := newContext(http.MethodPost, "/auth/login", `{"username":"admin","password":"secret"}`)
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", mockSvc.lastReq.Username)
	assert.Contains(t, w.Body.String(), `"access_token":"token"`)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{err: appErrors.ErrInvalidCredentials})

	c, w := newContext(http.MethodPost, "/auth/login", `{"username":`)
	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`)
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, w).Error.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})
	c, w := newContext(http.MethodGet, "/auth/me", "")
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)
}
