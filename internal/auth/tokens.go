package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"

	issuer = "inventaris"
)

var ErrInvalidToken = errors.New("Token is invalid or expired")

// Claims полезная нагрузка токенов; Type отличает access от refresh
type Claims struct {
	Type     string `json:"token_type"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (c Claims) UserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// Tokens выпускает и проверяет HS256-токены
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (t *Tokens) issue(kind string, userID int64, username string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Type:     kind,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (t *Tokens) Access(userID int64, username string) (string, error) {
	return t.issue(TokenAccess, userID, username, t.accessTTL)
}

func (t *Tokens) Refresh(userID int64, username string) (string, error) {
	return t.issue(TokenRefresh, userID, username, t.refreshTTL)
}

// Parse проверяет подпись, срок и тип токена
func (t *Tokens) Parse(raw, kind string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithLeeway(5*time.Second), // small clock skew
	)
	if err != nil || !token.Valid || claims.Type != kind {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
