package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

// TokenValidator verifies user access tokens.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*utils.Claims, error)
}

type AuthConfig struct {
	Keys        []string
	KeyHashes   []string
	Development bool
	Tokens      TokenValidator
}

// Authenticator checks API keys and, when present, user bearer tokens.
type Authenticator struct {
	cfg AuthConfig

	mu       sync.Mutex
	verified map[string]bool
	rejected map[string]bool
}

// maxRejected bounds the negative cache; it is cleared when full.
const maxRejected = 1024

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	return &Authenticator{cfg: cfg, verified: make(map[string]bool), rejected: make(map[string]bool)}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// validKey compares against plain keys first, then bcrypt hashes.
// Both hash matches and misses are cached so bcrypt runs at most once per key.
func (a *Authenticator) validKey(key string) bool {
	for _, k := range a.cfg.Keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}

	if len(a.cfg.KeyHashes) == 0 {
		return false
	}

	a.mu.Lock()
	ok, seen := a.verified[key], a.rejected[key]
	a.mu.Unlock()
	if ok {
		return true
	}
	if seen {
		return false
	}
	for _, h := range a.cfg.KeyHashes {
		if utils.CheckAPIKeyHash(key, h) {
			a.mu.Lock()
			a.verified[key] = true
			a.mu.Unlock()
			return true
		}
	}

	a.mu.Lock()
	if len(a.rejected) >= maxRejected {
		a.rejected = make(map[string]bool)
	}
	a.rejected[key] = true
	a.mu.Unlock()
	return false
}

// setUser stores the bearer user's claims when the token verifies.
func (a *Authenticator) setUser(c *gin.Context, token string) bool {
	if a.cfg.Tokens == nil || token == "" {
		return false
	}
	claims, err := a.cfg.Tokens.ValidateAccessToken(c.Request.Context(), token)
	if err != nil {
		return false
	}
	c.Set(utils.ClaimsKey, claims)
	return true
}

// Middleware accepts x-api-key or a bearer API key, or a bearer user token.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		bearer := bearerToken(c)

		if a.cfg.Development {
			a.setUser(c, bearer)
			c.Next()
			return
		}

		switch {
		case apiKey != "":
			if !a.validKey(apiKey) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorBody("Invalid API key"))
				return
			}
			a.setUser(c, bearer)
		case bearer != "":
			if !a.validKey(bearer) && !a.setUser(c, bearer) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorBody("Invalid API key"))
				return
			}
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorBody("API key missing"))
			return
		}
		c.Next()
	}
}
