package controllers

import (
	"net/http"

	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

// AuthController exposes the caller's token. Tokens are minted by the
// operator CLI; there is no password sign in.
type AuthController struct {
	authenticator *middleware.Authenticator
}

func InitAuthController(authenticator *middleware.Authenticator) *AuthController {
	return &AuthController{authenticator: authenticator}
}

// CurrentUser handles GET /api/auth/me
func (ac *AuthController) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, ok := middleware.Claims(c)
		if !ok {
			util.HandleError(c, http.StatusUnauthorized, auth.ErrMissingToken)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "", gin.H{
			"id":        claim.Id,
			"name":      claim.Name,
			"email":     claim.Email,
			"role":      claim.Role,
			"expiresAt": claim.ExpiresAt,
		})
	}
}

// Logout handles POST /api/auth/logout
func (ac *AuthController) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ac.authenticator.Revoke(c); err != nil {
			respondError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Logged out successfully", nil)
	}
}
