package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/storefront/internal/model"
)

// Claims mirrors the payload of the tokens issued by the storefront backend.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"`
}

// JWT decodes access tokens and, when it holds the signing secret, verifies and issues them.
type JWT struct {
	secretKey string
}

var _ model.TokenInspector = (*JWT)(nil)

// NewJWT creates a new JWT token manager. An empty secret disables signature
// verification and token issuing.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey}
}

const (
	accessTTL   = 5 * time.Minute
	refreshTTL  = 24 * time.Hour
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrNoSecret is returned when issuing is attempted without a signing secret.
var ErrNoSecret = errors.New("jwt secret is not configured")

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(userID int64, username string) (string, error) {
	return j.sign(userID, username, typeAccess, accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(userID int64) (string, error) {
	return j.sign(userID, "", typeRefresh, refreshTTL)
}

func (j *JWT) sign(userID int64, username, tokenType string, ttl time.Duration) (string, error) {
	if j.secretKey == "" {
		return "", ErrNoSecret
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// ParseAccessToken extracts the claims of an access token. Without a secret the
// signature and expiry are not checked; callers look at ExpiresAt themselves.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessClaims, error) {
	claims, err := j.parse(tokenString, typeAccess)
	if err != nil {
		return model.AccessClaims{}, err
	}

	out := model.AccessClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// ParseRefreshToken validates a refresh token and returns its user id.
func (j *JWT) ParseRefreshToken(tokenString string) (int64, error) {
	claims, err := j.parse(tokenString, typeRefresh)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (j *JWT) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}

	if j.secretKey == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("failed to decode %s token: %w", tokenType, err)
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return []byte(j.secretKey), nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s token: %w", tokenType, err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("%s token is invalid", tokenType)
		}
	}

	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims, nil
}
