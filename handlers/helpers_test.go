package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Khyle1o1/student-management-system-sub000/brackets"
	"github.com/Khyle1o1/student-management-system-sub000/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Sharks"}`},
		{name: "empty body", body: ``, wantErr: "body must not be empty"},
		{name: "malformed", body: `{"name":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"nome":"Sharks"}`, wantErr: `unknown key "nome"`},
		{name: "wrong type", body: `{"name":7}`, wantErr: `incorrect JSON type for field "name"`},
		{name: "trailing garbage", body: `{"name":"Sharks"}{}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst payload
			err := readJSON(w, r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Sharks", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIDParam(t *testing.T) {
	newRequest := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := idParam(newRequest("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = idParam(newRequest("abc"), "id")
	assert.Error(t, err)

	_, err = idParam(newRequest("0"), "id")
	assert.Error(t, err)
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrMatchNotFound, http.StatusNotFound},
		{brackets.ErrMatchNotFound, http.StatusNotFound},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrBracketAlreadyCreated, http.StatusConflict},
		{services.ErrSeedingConflict, http.StatusConflict},
		{brackets.ErrRandomizeLocked, http.StatusConflict},
		{brackets.ErrAttemptsExhausted, http.StatusConflict},
		{brackets.ErrAlreadyLocked, http.StatusConflict},
		{brackets.ErrBracketNotLocked, http.StatusConflict},
		{brackets.ErrDownstreamCompleted, http.StatusConflict},
		{services.ErrNotEnoughTeams, http.StatusUnprocessableEntity},
		{services.ErrUnsupportedLogoFormat, http.StatusUnprocessableEntity},
		{brackets.ErrTeamNotInMatch, http.StatusUnprocessableEntity},
		{services.ErrLogoStorageNotConfigured, http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			mapServiceErrorToHTTP(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}
