package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login redirects the browser to the identity provider.
// GET /auth/google/login
func (h *AuthHandler) Login(c *gin.Context) {
	url, err := h.authService.LoginURL()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback completes the provider round trip and returns our own token.
// GET /auth/google/callback?state=...&code=...
func (h *AuthHandler) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		abortWithError(c, http.StatusUnauthorized, "sign-in was cancelled: "+providerErr)
		return
	}
	token, user, err := h.authService.CompleteLogin(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

// Me returns the signed-in user.
// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
