package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kike1196/beyco-sdadd-sub000/config"
)

var (
	ErrTokenExpired = errors.New("el token ha expirado")
	ErrTokenInvalid = errors.New("token inválido")
)

// Roles carried in the role claim
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

// issuer expected in the iss claim; tokens from any other issuer are rejected
const issuer = "capacita"

// TokenTypeAccess the only token type accepted on API calls
const TokenTypeAccess = "access"

// Claims JWT claims issued by the auth service
type Claims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	InstructorID int64  `json:"instructor_id,omitempty"` // set for instructor accounts
	TokenType    string `json:"token_type"`
	jwtv5.RegisteredClaims
}

// Manager signs and verifies tokens.
// Login lives in the external auth service; the generator here serves tooling and tests.
type Manager struct {
	secret         []byte
	accessTokenTTL time.Duration
}

// NewManager creates a Manager.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:         []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// GenerateAccessToken signs an access token.
func (m *Manager) GenerateAccessToken(userID, role string, instructorID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Role:         role,
		InstructorID: instructorID,
		TokenType:    TokenTypeAccess,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.accessTokenTTL)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies a token and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
