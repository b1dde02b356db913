package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/watchroom/server/internal/domain"
)

var ErrUnauthenticated = errors.New("invalid or expired token")

const anonymousName = "Anonymous"

type resolver struct {
	secret []byte
}

func NewResolver(secret string) *resolver {
	return &resolver{secret: []byte(secret)}
}

// Resolve maps a connection's credentials to a user descriptor. A present
// but invalid token is rejected; an absent token yields an anonymous user
// keyed by display name.
func (r *resolver) Resolve(token, fallbackName string) (domain.User, error) {
	if token != "" {
		return r.resolveToken(token)
	}

	name := strings.TrimSpace(fallbackName)
	if name == "" {
		name = anonymousName
	}

	return domain.User{DisplayName: name}, nil
}

func (r *resolver) resolveToken(tokenString string) (domain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.User{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.User{}, ErrUnauthenticated
	}

	user := domain.User{
		Id:          stringClaim(claims, "user_id"),
		DisplayName: stringClaim(claims, "display_name"),
		AvatarUrl:   stringClaim(claims, "avatar_url"),
	}
	if user.Id == "" {
		return domain.User{}, ErrUnauthenticated
	}
	if user.DisplayName == "" {
		user.DisplayName = anonymousName
	}

	return user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}
