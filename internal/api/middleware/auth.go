package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/api/metrics"
	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// Authenticator turns a bearer token into a principal on the request context.
type Authenticator struct {
	verifier ports.TokenVerifier
	log      zerolog.Logger
}

func NewAuthenticator(verifier ports.TokenVerifier, log zerolog.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, log: log}
}

// Required rejects the request unless it carries a valid bearer token.
func (a *Authenticator) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return err
			}

			p, err := a.verify(c, token)
			if err != nil {
				return err
			}
			attach(c, p)
			return next(c)
		}
	}
}

// Optional attaches a principal when a valid token is present and otherwise
// lets the request through anonymously.
func (a *Authenticator) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return next(c)
			}
			if p, err := a.verify(c, token); err == nil {
				attach(c, p)
			}
			return next(c)
		}
	}
}

func (a *Authenticator) verify(c echo.Context, token string) (*domain.Principal, error) {
	p, err := a.verifier.Verify(token)
	if err != nil {
		result := "invalid"
		if errors.Is(err, domain.ErrTokenExpired) {
			result = "expired"
		}
		metrics.TokenVerificationsTotal.WithLabelValues(result).Inc()
		a.log.Debug().
			Err(err).
			Str("path", c.Path()).
			Str("remote_ip", c.RealIP()).
			Msg("token rejected")
		return nil, err
	}
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return p, nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrMissingCredentials
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrMissingCredentials
	}
	return strings.TrimSpace(parts[1]), nil
}

func attach(c echo.Context, p *domain.Principal) {
	req := c.Request()
	c.SetRequest(req.WithContext(domain.ContextWithPrincipal(req.Context(), p)))
}
