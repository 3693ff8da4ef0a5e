package auth

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Claims represents the JWT claims
type Claims struct {
	WorkerID uint   `json:"worker_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Tokens issues and validates HS256 tokens for workers
type Tokens struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokens builds a token issuer; ttl <= 0 defaults to 24h.
func NewTokens(secret, issuer, audience string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl}
}

// Generate generates a JWT token for the given worker
func (t *Tokens) Generate(workerID uint, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		WorkerID: workerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(workerID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate validates a JWT token and returns the claims
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Manually check audience for compatibility with jwt v5 types
	if !slices.Contains(claims.Audience, t.audience) {
		return nil, errors.New("invalid token audience")
	}
	if claims.WorkerID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
