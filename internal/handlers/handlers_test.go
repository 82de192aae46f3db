package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/barmaster-pos/internal/middleware"
	"github.com/otcheredev/barmaster-pos/internal/models"
	"github.com/otcheredev/barmaster-pos/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Login(ctx context.Context, creds models.Credentials) (string, models.AppState, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Get(1).(models.AppState), args.Error(2)
}

func (m *mockSessions) Current(ctx context.Context, token string) (models.AppState, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.AppState), args.Error(1)
}

func (m *mockSessions) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func sampleState() models.AppState {
	sectorA := models.Sector{ID: uuid.New(), Name: "Terrace"}
	sectorB := models.Sector{ID: uuid.New(), Name: "Bar"}
	return models.AppState{
		Session: &models.Session{
			ID:        uuid.New(),
			StaffID:   uuid.New(),
			StaffName: "Lucia",
			Role:      "waiter",
			Establishment: models.Establishment{
				ID:   uuid.New(),
				Name: "La Esquina",
			},
		},
		Floor: &models.FloorSnapshot{
			Sectors: []models.Sector{sectorA, sectorB},
			Tables: []models.Table{
				{ID: uuid.New(), DisplayLabel: "T1", State: models.TableStateFree, SectorID: sectorA.ID},
				{ID: uuid.New(), DisplayLabel: "T2", State: models.TableStateOccupied, SectorID: sectorA.ID},
				{ID: uuid.New(), DisplayLabel: "T9", State: models.TableStateFree, SectorID: uuid.New()},
			},
			LoadedAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestLogin(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		sessions := &mockSessions{}
		state := sampleState()
		sessions.On("Login", mock.Anything, models.Credentials{Email: "lucia@bar.test", Password: "pw"}).
			Return("signed.token", state, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions",
			strings.NewReader(`{"email":" lucia@bar.test ","password":"pw"}`))
		NewSessionHandler(sessions).Login(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Token   string               `json:"token"`
			Session models.Session       `json:"session"`
			Floor   models.FloorSnapshot `json:"floor"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "signed.token", body.Token)
		assert.Equal(t, state.Session.ID, body.Session.ID)
		assert.Len(t, body.Floor.Tables, 3)
		sessions.AssertExpectations(t)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			reason models.RejectionReason
		}{
			{"invalid credentials", models.NewInvalidCredentials(nil), http.StatusUnauthorized, models.ReasonInvalidCredentials},
			{"profile not found", models.NewProfileNotFound(nil), http.StatusForbidden, models.ReasonProfileNotFound},
			{"staff disabled", models.NewStaffDisabled(), http.StatusForbidden, models.ReasonStaffDisabled},
			{"subscription inactive", models.NewSubscriptionInactive("La Esquina"), http.StatusForbidden, models.ReasonSubscriptionInactive},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sessions := &mockSessions{}
				sessions.On("Login", mock.Anything, mock.Anything).Return("", models.AppState{}, tt.err)

				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions",
					strings.NewReader(`{"email":"a@b.test","password":"x"}`))
				NewSessionHandler(sessions).Login(rec, req)

				assert.Equal(t, tt.status, rec.Code)
				body := decodeError(t, rec)
				assert.Equal(t, string(tt.reason), body.Reason)
				assert.NotEmpty(t, body.Message)
			})
		}
	})

	t.Run("subscription message names the establishment", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Login", mock.Anything, mock.Anything).
			Return("", models.AppState{}, models.NewSubscriptionInactive("La Esquina"))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions",
			strings.NewReader(`{"email":"a@b.test","password":"x"}`))
		NewSessionHandler(sessions).Login(rec, req)

		assert.Contains(t, decodeError(t, rec).Message, "La Esquina")
	})

	t.Run("malformed body", func(t *testing.T) {
		sessions := &mockSessions{}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"email":`))
		NewSessionHandler(sessions).Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		sessions.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Login", mock.Anything, mock.Anything).Return("", models.AppState{}, errors.New("redis down"))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions",
			strings.NewReader(`{"email":"a@b.test","password":"x"}`))
		NewSessionHandler(sessions).Login(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "redis")
	})
}

func TestFloor(t *testing.T) {
	t.Run("groups tables by sector", func(t *testing.T) {
		sessions := &mockSessions{}
		state := sampleState()
		sessions.On("Current", mock.Anything, "tok").Return(state, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/floor", nil)
		req.Header.Set("Authorization", "Bearer tok")
		middleware.SessionToken(http.HandlerFunc(NewSessionHandler(sessions).Floor)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body floorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Len(t, body.Sectors, 2)
		assert.Equal(t, "Terrace", body.Sectors[0].Sector.Name)
		assert.Len(t, body.Sectors[0].Tables, 2)
		assert.Empty(t, body.Sectors[1].Tables)
		assert.Equal(t, 1, body.OrphanedTables)
		assert.Equal(t, state.Floor.LoadedAt, body.LoadedAt)
	})

	t.Run("logged out session", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Current", mock.Anything, "tok").Return(models.AppState{}, services.ErrSessionNotFound)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/floor", nil)
		req.Header.Set("Authorization", "Bearer tok")
		middleware.SessionToken(http.HandlerFunc(NewSessionHandler(sessions).Floor)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "session_not_found", decodeError(t, rec).Reason)
	})

	t.Run("invalid token", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Current", mock.Anything, "tok").Return(models.AppState{}, services.ErrInvalidToken)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/floor", nil)
		req.Header.Set("Authorization", "Bearer tok")
		middleware.SessionToken(http.HandlerFunc(NewSessionHandler(sessions).Floor)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", decodeError(t, rec).Reason)
	})
}

func TestLogout(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Logout", mock.Anything, "tok").Return(nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/current", nil)
		req.Header.Set("Authorization", "Bearer tok")
		middleware.SessionToken(http.HandlerFunc(NewSessionHandler(sessions).Logout)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		sessions.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Logout", mock.Anything, "tok").Return(services.ErrInvalidToken)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/current", nil)
		req.Header.Set("Authorization", "Bearer tok")
		middleware.SessionToken(http.HandlerFunc(NewSessionHandler(sessions).Logout)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("without middleware", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/current", nil)
		NewSessionHandler(&mockSessions{}).Logout(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"backend": stubPinger{}, "cache": stubPinger{}})

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "healthy", body.Services["backend"])
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"backend": stubPinger{err: errors.New("down")}})

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "unhealthy", body.Services["backend"])
	})

	t.Run("ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		NewHealthHandler(map[string]Pinger{"backend": stubPinger{err: errors.New("down")}}).
			Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
