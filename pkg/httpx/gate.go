package httpx

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/syedsanaulhaq/scl/pkg/jwtx"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

var (
	ErrTokenRequired    = errors.New("httpx: bearer token required")
	ErrInsufficientRole = errors.New("httpx: insufficient role")
)

// Rejection reasons. These strings are part of the API.
const (
	ReasonTokenRequired = "token required"
	ReasonInvalidToken  = "invalid token"
	ReasonTokenExpired  = "token expired"
	ReasonInsufficient  = "insufficient permissions"
)

// Outcome is the Gate's decision for one request.
type Outcome struct {
	Authorized bool
	Status     int    // 200 when authorized, else 401 or 403
	Code       string // machine readable error code on rejection
	Reason     string
	Claims     jwtx.Claims
	Err        error
}

func authorized(c jwtx.Claims) Outcome {
	return Outcome{Authorized: true, Status: http.StatusOK, Claims: c}
}

func rejected(status int, code, reason string, err error) Outcome {
	return Outcome{Status: status, Code: code, Reason: reason, Err: err}
}

// Observer is told about every decision the Gate's middleware makes.
type Observer func(r *http.Request, o Outcome)

// Gate authenticates bearer access tokens and enforces role allow-lists.
//
// Evaluate holds the whole decision and has no side effects. Require and
// Optional adapt it to middleware.
type Gate struct {
	verifier jwtx.Verifier
	observe  Observer
}

// NewGate builds a Gate. obs may be nil.
func NewGate(v jwtx.Verifier, obs Observer) *Gate {
	return &Gate{verifier: v, observe: obs}
}

// Evaluate decides whether r may proceed. An empty roles list admits any
// authenticated caller.
func (g *Gate) Evaluate(r *http.Request, roles []string) Outcome {
	raw, ok := BearerToken(r)
	if !ok {
		return rejected(http.StatusUnauthorized, "token_required", ReasonTokenRequired, ErrTokenRequired)
	}

	claims, err := g.verifier.Verify(raw, jwtx.AccessToken)
	switch jwtx.Classify(err) {
	case jwtx.RejectNone:
	case jwtx.RejectExpired:
		return rejected(http.StatusUnauthorized, "token_expired", ReasonTokenExpired, err)
	default:
		return rejected(http.StatusUnauthorized, "invalid_token", ReasonInvalidToken, err)
	}

	if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
		o := rejected(http.StatusForbidden, "insufficient_permissions", ReasonInsufficient, ErrInsufficientRole)
		o.Claims = claims
		return o
	}
	return authorized(claims)
}

// Require admits only authenticated callers whose role is in roles (any role
// when roles is empty). Rejected requests never reach next.
func (g *Gate) Require(roles ...string) Middleware {
	roles = slices.Clone(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			o := g.Evaluate(r, roles)
			g.notify(r, o)

			if !o.Authorized {
				slogx.FromContext(r.Context()).Debug("gate rejected request",
					"status", o.Status,
					"reason", o.Reason,
					"err", o.Err,
				)
				writeRejection(w, o, roles)
				return
			}

			next.ServeHTTP(w, r.WithContext(attach(r, o.Claims)))
		})
	}
}

// Optional attaches the identity when a valid access token is present and
// otherwise lets the request through anonymously, without saying why.
func (g *Gate) Optional() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, present := BearerToken(r); !present {
				next.ServeHTTP(w, r)
				return
			}

			o := g.Evaluate(r, nil)
			g.notify(r, o)
			if !o.Authorized {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(attach(r, o.Claims)))
		})
	}
}

func (g *Gate) notify(r *http.Request, o Outcome) {
	if g.observe != nil {
		g.observe(r, o)
	}
}

func attach(r *http.Request, c jwtx.Claims) context.Context {
	ctx := withClaims(r.Context(), c)
	return slogx.WithUser(ctx, c.Subject, c.Role)
}

// writeRejection follows RFC 6750 section 3 for the challenge header.
func writeRejection(w http.ResponseWriter, o Outcome, roles []string) {
	switch o.Status {
	case http.StatusForbidden:
		w.Header().Set("WWW-Authenticate",
			`Bearer error="insufficient_scope", error_description="`+o.Reason+`", scope="`+strings.Join(roles, " ")+`"`)
	default:
		if errors.Is(o.Err, ErrTokenRequired) {
			w.Header().Set("WWW-Authenticate", `Bearer`)
		} else {
			w.Header().Set("WWW-Authenticate",
				`Bearer error="invalid_token", error_description="`+o.Reason+`"`)
		}
	}
	WriteError(w, o.Status, o.Code, o.Reason)
}
