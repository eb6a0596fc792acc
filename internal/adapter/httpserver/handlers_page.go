package httpserver

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/markthomas93/WBBMTT/internal/platform/config"
	apperrors "github.com/markthomas93/WBBMTT/internal/platform/errors"
	"github.com/markthomas93/WBBMTT/internal/platform/version"
)

// pageData feeds templates/index.html.
type pageData struct {
	// WSPath is the WebSocket path including the forwarded overrides.
	WSPath           string
	NoPreventDefault bool
	Version          string
}

func (s *Server) handlePage(c echo.Context) error {
	_, so, err := s.resolver.Resolve(c.QueryParams())
	if err != nil {
		verr := apperrors.ValidationError(err.Error()).WithCause(err)
		var fe *config.FieldError
		if errors.As(err, &fe) {
			verr = verr.WithField("field", fe.Field)
		}
		return verr
	}

	wsPath := "/ws"
	if q := so.Query(s.defaults); len(q) > 0 {
		wsPath += "?" + q.Encode()
	}

	return s.renderTemplate(c, "index.html", pageData{
		WSPath:           wsPath,
		NoPreventDefault: so.NoPreventDefault,
		Version:          version.Get().String(),
	})
}
