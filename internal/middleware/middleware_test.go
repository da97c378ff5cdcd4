package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/admin-panel-api/internal/utils"
)

type fakeTokens struct{}

func (fakeTokens) ValidateAccessToken(ctx context.Context, token string) (*utils.Claims, error) {
	if token == "user-token" {
		return &utils.Claims{UserID: "user-1"}, nil
	}
	return nil, errors.New("invalid token")
}

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthenticator(cfg).Middleware())
	r.GET("/ping", func(c *gin.Context) {
		user := ""
		if claims, ok := utils.ClaimsFrom(c); ok {
			user = claims.UserID
		}
		c.String(http.StatusOK, "pong:"+user)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	r := newAuthRouter(AuthConfig{
		Keys:      []string{"plain-key"},
		KeyHashes: []string{string(hash)},
		Tokens:    fakeTokens{},
	})

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{"missing", nil, http.StatusUnauthorized, "API key missing"},
		{"plain x-api-key", map[string]string{"x-api-key": "plain-key"}, http.StatusOK, "pong:"},
		{"hashed x-api-key", map[string]string{"X-API-Key": "hashed-key"}, http.StatusOK, "pong:"},
		{"wrong x-api-key", map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized, "Invalid API key"},
		{"bearer api key", map[string]string{"Authorization": "Bearer plain-key"}, http.StatusOK, "pong:"},
		{"bearer user token", map[string]string{"Authorization": "Bearer user-token"}, http.StatusOK, "pong:user-1"},
		{"key plus user token", map[string]string{"x-api-key": "plain-key", "Authorization": "Bearer user-token"}, http.StatusOK, "pong:user-1"},
		{"bad bearer", map[string]string{"Authorization": "Bearer junk"}, http.StatusUnauthorized, "Invalid API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Fatalf("body = %s, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestValidKeyCachesHashResults(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAuthenticator(AuthConfig{KeyHashes: []string{string(hash)}})

	if a.validKey("wrong-key") {
		t.Fatal("wrong key accepted")
	}
	if !a.rejected["wrong-key"] {
		t.Fatal("rejected key not cached")
	}

	// A cached miss is answered without consulting the hashes again.
	late, err := bcrypt.GenerateFromPassword([]byte("wrong-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a.cfg.KeyHashes = append(a.cfg.KeyHashes, string(late))
	if a.validKey("wrong-key") {
		t.Fatal("cached rejection was re-checked")
	}

	if !a.validKey("hashed-key") || !a.verified["hashed-key"] {
		t.Fatal("hashed key not accepted and cached")
	}

	for i := 0; len(a.rejected) < maxRejected; i++ {
		a.rejected[strings.Repeat("x", i+1)] = true
	}
	if a.validKey("another-wrong-key") {
		t.Fatal("wrong key accepted")
	}
	if len(a.rejected) != 1 || !a.rejected["another-wrong-key"] {
		t.Fatalf("negative cache not reset when full: %d entries", len(a.rejected))
	}
}

func TestValidKeyWithoutHashes(t *testing.T) {
	a := NewAuthenticator(AuthConfig{Keys: []string{"plain-key"}})
	if !a.validKey("plain-key") {
		t.Fatal("plain key rejected")
	}
	if a.validKey("user-token") {
		t.Fatal("unknown key accepted")
	}
	if len(a.rejected) != 0 {
		t.Fatal("nothing to cache when no hashes are configured")
	}
}

func TestAuthMiddlewareDevelopmentBypass(t *testing.T) {
	r := newAuthRouter(AuthConfig{Keys: []string{"plain-key"}, Development: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(ctx, 0.001, 2)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes: %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("other client limited: %d", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitMetrics()
	InitMetrics()

	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", MetricsHandler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `http_requests_total{method="GET",path="/items/:id",status="204"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}
