// AngelaMos | 2026
// request.go

package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLUUID returns the chi URL parameter name when it is a well-formed UUID.
// Anything else cannot name a stored row, so handlers answer 404.
func URLUUID(r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// NullIfEmpty maps an empty id to a SQL NULL argument.
func NullIfEmpty(id string) any {
	if id == "" {
		return nil
	}
	return id
}
