package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const GuestName = "Guest"

var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity provider's token claims. Tokens are issued
// externally; this package only verifies them.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Resolver extracts an optional display name for the order greeting from a
// bearer token. A missing or invalid token is the normal guest state, never
// an error.
type Resolver struct {
	secretKey []byte
}

func NewResolver(secretKey string) *Resolver {
	return &Resolver{secretKey: []byte(secretKey)}
}

// DisplayName returns the shopper's first name, or "Guest" when no valid
// token is present.
func (r *Resolver) DisplayName(req *http.Request) string {
	// Without a configured secret no token can be trusted; everyone is a guest.
	if len(r.secretKey) == 0 {
		return GuestName
	}

	token := bearerToken(req)
	if token == "" {
		return GuestName
	}

	claims, err := r.validate(token)
	if err != nil || claims.Name == "" {
		return GuestName
	}

	// Greeting uses the first name only
	if first, _, found := strings.Cut(claims.Name, " "); found {
		return first
	}
	return claims.Name
}

func (r *Resolver) validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secretKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
