package middleware

import (
	"net/http"
	"time"

	"citystore-api-io/api/internal/auth"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const claimsKey = "citystore.claims"

var (
	errRevokedToken = errors.New("token has been revoked, please sign in again")
	errForbidden    = errors.New("insufficient permissions")
)

// Authenticator verifies bearer tokens against the signing secret and the blacklist.
type Authenticator struct {
	secret    string
	blacklist auth.Blacklist
}

func NewAuthenticator(secret string, blacklist auth.Blacklist) *Authenticator {
	return &Authenticator{secret: secret, blacklist: blacklist}
}

func (a *Authenticator) verify(c *gin.Context) (auth.JWTClaim, error) {
	tokenString := auth.ExtractToken(c)
	if tokenString == "" {
		return auth.JWTClaim{}, auth.ErrMissingToken
	}

	claim, err := auth.ValidateToken(a.secret, tokenString)
	if err != nil {
		return auth.JWTClaim{}, err
	}

	if a.blacklist != nil {
		revoked, err := a.blacklist.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			util.LogError("Error while checking blacklist", err)
			return auth.JWTClaim{}, errRevokedToken
		}
		if revoked {
			return auth.JWTClaim{}, errRevokedToken
		}
	}
	return claim, nil
}

// Protect rejects requests without a valid token.
func (a *Authenticator) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, err := a.verify(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, errors.Cause(err))
			c.Abort()
			return
		}

		c.Set(claimsKey, claim)
		c.Next()
	}
}

// Authorize must run after Protect. It restricts the route to the given roles.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claim, ok := Claims(c)
		if !ok {
			util.HandleError(c, http.StatusUnauthorized, auth.ErrMissingToken)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claim.Role == role {
				c.Next()
				return
			}
		}

		util.HandleError(c, http.StatusForbidden, errForbidden)
		c.Abort()
	}
}

// Revoke blacklists the request's token for the rest of its lifetime.
func (a *Authenticator) Revoke(c *gin.Context) error {
	claim, ok := Claims(c)
	if !ok || a.blacklist == nil {
		return nil
	}

	ttl := AccessTokenRemaining(claim)
	return a.blacklist.Revoke(c.Request.Context(), auth.ExtractToken(c), ttl)
}

// AccessTokenRemaining is the time left before the token expires on its own.
func AccessTokenRemaining(claim auth.JWTClaim) time.Duration {
	if claim.ExpiresAt == nil {
		return auth.AccessTokenExpirationTime
	}
	return time.Until(claim.ExpiresAt.Time)
}

// Claims returns the claims attached by Protect.
func Claims(c *gin.Context) (auth.JWTClaim, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return auth.JWTClaim{}, false
	}
	claim, ok := v.(auth.JWTClaim)
	return claim, ok
}
