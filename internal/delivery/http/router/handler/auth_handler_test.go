package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizhub/internal/delivery/http/validator"
	"bizhub/internal/domain/entity"
	"bizhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/labstack/echo/v4"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) SignUp(ctx context.Context, input *usecase.SignUpInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *mockAuthUsecase) SignIn(ctx context.Context, input *usecase.SignInInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *mockAuthUsecase) SignOut(ctx context.Context, input *usecase.SignOutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthUsecase) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.AuthOutput), args.Error(1)
}

func (m *mockAuthUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockAuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockAuthUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, input *usecase.ChangePasswordInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

func (m *mockAuthUsecase) RequestEmailVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)

	return args.String(0), args.Error(1)
}

func (m *mockAuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)

	return args.String(0), args.Error(1)
}

func (m *mockAuthUsecase) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthUsecase) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *mockAuthUsecase) ListSessions(ctx context.Context, userID uuid.UUID) ([]*usecase.SessionInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*usecase.SessionInfo), args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()

	return e
}

func TestAuthHandler_SignInBusiness_SetsScopeFromRoute(t *testing.T) {
	uc := new(mockAuthUsecase)
	h := NewAuthHandler(uc, newDiscardLogger())

	uc.On("SignIn", mock.Anything, mock.MatchedBy(func(input *usecase.SignInInput) bool {
		return input.Scope == entity.ScopeBusiness && input.Email == "owner@example.com"
	})).Return(&usecase.AuthOutput{AccessToken: "access", RefreshToken: "refresh"}, nil)

	e := newTestEcho()
	body := `{"email":"owner@example.com","password":"secret","scope":"any"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/business/signin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SignInBusiness(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access")
	uc.AssertExpectations(t)
}

func TestAuthHandler_SignIn_PayloadCannotWidenScope(t *testing.T) {
	uc := new(mockAuthUsecase)
	h := NewAuthHandler(uc, newDiscardLogger())

	uc.On("SignIn", mock.Anything, mock.MatchedBy(func(input *usecase.SignInInput) bool {
		return input.Scope == entity.ScopeIndividual
	})).Return(&usecase.AuthOutput{AccessToken: "access", RefreshToken: "refresh"}, nil)

	e := newTestEcho()
	// A scope smuggled into the body must be overwritten by the route.
	body := `{"email":"user@example.com","password":"secret","Scope":"business"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/individual/signin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SignInIndividual(c)
	assert.NoError(t, err)
	uc.AssertExpectations(t)
}

func TestAuthHandler_SignUp_RejectsInvalidPayload(t *testing.T) {
	uc := new(mockAuthUsecase)
	h := NewAuthHandler(uc, newDiscardLogger())

	e := newTestEcho()
	body := `{"email":"not-an-email","password":"secret","full_name":"A","account_type":"individual"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/individual/signup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SignUp(c)
	assert.Error(t, err)
	uc.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
}

func TestAuthHandler_GetProfile_RequiresAuthenticatedContext(t *testing.T) {
	uc := new(mockAuthUsecase)
	h := NewAuthHandler(uc, newDiscardLogger())

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.GetProfile(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestAuthHandler_RequestPasswordReset_NeverEchoesToken(t *testing.T) {
	uc := new(mockAuthUsecase)
	h := NewAuthHandler(uc, newDiscardLogger())

	uc.On("RequestPasswordReset", mock.Anything, "user@example.com").Return("raw-reset-token", nil)

	e := newTestEcho()
	body := `{"email":"user@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset/request", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RequestPasswordReset(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "raw-reset-token")
}
