package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syedsanaulhaq/scl/pkg/httpx"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
)

func gateKeys() jwtx.KeyConfig {
	return jwtx.KeyConfig{
		Issuer:        "scl-test",
		AccessSecret:  []byte(strings.Repeat("A", 32)),
		RefreshSecret: []byte(strings.Repeat("R", 32)),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

type gateFixture struct {
	gate     *httpx.Gate
	issuer   *jwtx.Issuer
	outcomes []httpx.Outcome
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	keys := gateKeys()

	iss, err := jwtx.NewIssuer(keys)
	require.NoError(t, err)
	ver, err := jwtx.NewVerifier(keys)
	require.NoError(t, err)

	f := &gateFixture{issuer: iss}
	f.gate = httpx.NewGate(ver, func(_ *http.Request, o httpx.Outcome) {
		f.outcomes = append(f.outcomes, o)
	})
	return f
}

func (f *gateFixture) token(t *testing.T, role string, at time.Time) string {
	t.Helper()
	tok, err := f.issuer.IssueAccessTokenAt(jwtx.Identity{
		Subject: "user-" + role,
		Email:   role + "@example.edu",
		Role:    role,
	}, at)
	require.NoError(t, err)
	return tok
}

func TestGate_Evaluate(t *testing.T) {
	f := newGateFixture(t)
	now := time.Now()

	refresh, err := f.issuer.IssueRefreshTokenAt(jwtx.Identity{Subject: "u1", Email: "u1@example.edu"}, now)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		roles      []string
		wantStatus int
		wantReason string
	}{
		{"no header", "", nil, http.StatusUnauthorized, httpx.ReasonTokenRequired},
		{"basic scheme", "Basic dXNlcjpwYXNz", nil, http.StatusUnauthorized, httpx.ReasonTokenRequired},
		{"empty bearer", "Bearer   ", nil, http.StatusUnauthorized, httpx.ReasonTokenRequired},
		{"garbage token", "Bearer not.a.jwt", nil, http.StatusUnauthorized, httpx.ReasonInvalidToken},
		{"refresh token", "Bearer " + refresh, nil, http.StatusUnauthorized, httpx.ReasonInvalidToken},
		{"expired", "Bearer " + f.token(t, "admin", now.Add(-time.Hour)), nil, http.StatusUnauthorized, httpx.ReasonTokenExpired},
		{"wrong role", "Bearer " + f.token(t, "student", now), []string{"admin"}, http.StatusForbidden, httpx.ReasonInsufficient},
		{"allowed role", "Bearer " + f.token(t, "admin", now), []string{"admin", "teacher"}, http.StatusOK, ""},
		{"any role", "Bearer " + f.token(t, "student", now), nil, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + f.token(t, "teacher", now), []string{"teacher"}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			o := f.gate.Evaluate(req, tt.roles)
			require.Equal(t, tt.wantStatus, o.Status)
			require.Equal(t, tt.wantReason, o.Reason)
			require.Equal(t, tt.wantStatus == http.StatusOK, o.Authorized)
		})
	}

	// Evaluate is pure: the observer only hears from middleware.
	require.Empty(t, f.outcomes)
}

func TestGate_Require(t *testing.T) {
	f := newGateFixture(t)

	var reached bool
	var gotUser, gotRole string
	h := f.gate.Require("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		gotUser = httpx.UserIDFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("student is forbidden", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "student", time.Now()))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.False(t, reached)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="insufficient_scope"`)

		var body httpx.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "insufficient_permissions", body.Error)
		require.Equal(t, "insufficient permissions", body.Message)
	})

	t.Run("missing token", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, reached)
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("expired token", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "admin", time.Now().Add(-20*time.Minute)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.False(t, reached)

		var body httpx.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "token expired", body.Message)
	})

	t.Run("admin passes", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t, "admin", time.Now()))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.True(t, reached)
		require.Equal(t, "user-admin", gotUser)
		require.Equal(t, "admin", gotRole)
	})

	require.Len(t, f.outcomes, 4)
}

func TestGate_Optional(t *testing.T) {
	f := newGateFixture(t)

	var gotUser string
	h := f.gate.Optional()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		wantUser string
	}{
		{"anonymous", "", ""},
		{"bad token", "Bearer nope", ""},
		{"expired token", "Bearer " + f.token(t, "teacher", time.Now().Add(-time.Hour)), ""},
		{"valid token", "Bearer " + f.token(t, "teacher", time.Now()), "user-teacher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = "unset"
			req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.wantUser, gotUser)
			require.Empty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("outer"), nil, mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}
