package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inventory-platform/inventory-api/internal/api/metrics"
	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      423   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	// An unreadable body is a login with no credentials; the service rejects
	// and audits it like any other failed attempt.
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		req = loginRequest{}
	}

	meta := requestMeta(c)
	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username:      req.Username,
		Password:      req.Password,
		SourceAddress: meta.SourceAddress,
		UserAgent:     meta.UserAgent,
	})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		User:      toPrincipalResponse(res.Principal),
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
	})
}

// Me returns the authenticated caller.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrincipalResponse(p))
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid_request"
	case errors.Is(err, domain.ErrAccountLocked):
		return "locked"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "invalid_credentials"
	default:
		return "error"
	}
}
