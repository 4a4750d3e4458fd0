package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

// ParseUUIDParam reads a chi path parameter as a UUID. Malformed ids are
// reported as not found so probing ids reveals nothing.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "resource not found")
	}
	return id, nil
}
