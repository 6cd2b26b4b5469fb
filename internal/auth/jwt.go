package auth

import (
	"strings"
	"time"

	"citystore-api-io/api/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const AccessTokenExpirationTime = 24 * time.Hour

var (
	ErrMissingToken = errors.New("request does not contain an access token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type JWTClaim struct {
	Id    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Phone string      `json:"phone,omitempty"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the admin role.
func (j JWTClaim) IsAdmin() bool {
	return j.Role == models.RoleAdmin
}

// Profile is the part of the claim the checkout uses to prefill shipping.
func (j JWTClaim) Profile() models.UserProfile {
	return models.UserProfile{
		Name:  j.Name,
		Email: j.Email,
		Phone: j.Phone,
	}
}

// Generate auth token for a user. Returns the token and its expiry as unix seconds.
func GenerateJWT(secret string, ttl time.Duration, claim JWTClaim) (string, int64, error) {
	if secret == "" {
		return "", 0, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = AccessTokenExpirationTime
	}

	now := time.Now()
	expirationTime := now.Add(ttl)
	claim.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claim.Id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", 0, errors.Wrap(err, "sign token")
	}

	return tokenString, expirationTime.Unix(), nil
}

// Validate a signed jwt auth token and it's expiration time.
func ValidateToken(secret, signedToken string) (JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return JWTClaim{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claim, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return JWTClaim{}, ErrInvalidToken
	}

	return *claim, nil
}

// Extract authorization token from request header. The Bearer prefix is optional.
func ExtractToken(c *gin.Context) string {
	tokenString := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "Bearer ") {
		return strings.TrimSpace(tokenString[7:])
	}
	return tokenString
}
