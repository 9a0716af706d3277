package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into v, writing a 400 and returning false on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		msg := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		authsdk.ErrInvalidRequest.WithMessage(msg).WriteError(w)
		return false
	}
	return true
}

// writeServiceError maps service errors onto API errors. Anything unknown is
// logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		authsdk.ErrValidation.WithMessage(formatFields(verr.Fields)).WriteError(w)
	case errors.Is(err, service.ErrValidation):
		authsdk.ErrValidation.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrAccountInactive):
		authsdk.ErrAccountInactive.WriteError(w)
	case errors.Is(err, service.ErrDuplicateAccount):
		authsdk.ErrAccountExists.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrSelfDeactivation):
		authsdk.ErrInvalidRequest.WithMessage("cannot deactivate your own account").WriteError(w)
	case errors.Is(err, service.ErrSelfDemotion):
		authsdk.ErrInvalidRequest.WithMessage("cannot change your own role").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
