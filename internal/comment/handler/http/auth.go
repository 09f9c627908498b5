package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/levelupgamer/commenttree/internal/comment/model"
)

type actorKey struct{}

var errBadToken = errors.New("invalid token")

// Identity reads the storefront session from an HS256 bearer token. Requests
// without a token continue as anonymous visitors; a token that does not
// verify is rejected.
func (h *Handler) Identity(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := ParseToken(h.secret, token)
		if err != nil {
			writeJSON(w, stdhttp.StatusUnauthorized, map[string]any{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// ActorFrom returns the actor attached by Identity, or the anonymous actor.
func ActorFrom(ctx context.Context) model.Actor {
	a, _ := ctx.Value(actorKey{}).(model.Actor)
	return a
}

func ParseToken(secret []byte, token string) (model.Actor, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Actor{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return model.Actor{}, errBadToken
	}

	email, _ := claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return model.Actor{}, errBadToken
	}
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return model.Actor{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Role:  model.NormalizeRole(role),
	}, nil
}

// IssueToken signs a session token for a. Used by the dev token command and tests.
func IssueToken(secret []byte, a model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"name":  a.Name,
		"email": a.Email,
		"role":  string(a.Role),
		"iat":   now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
