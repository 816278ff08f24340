package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examify/auth-service/internal/config"
	"github.com/examify/auth-service/internal/domain"
	api "github.com/examify/auth-service/internal/http"
	"github.com/examify/auth-service/internal/log"
	"github.com/examify/auth-service/internal/oauth"
	"github.com/examify/auth-service/internal/queue"
	"github.com/examify/auth-service/internal/repo"
)

const frontendURL = "http://frontend.local"

type captureMailer struct {
	links []string
	fail  bool
}

func (m *captureMailer) SendPasswordReset(to, link string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.links = append(m.links, link)
	return nil
}

// fakeProvider stands in for Google/Facebook: AuthURL echoes the state and
// FetchProfile returns a canned profile without any network exchange.
type fakeProvider struct {
	name    string
	profile *oauth.Profile
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (f *fakeProvider) FetchProfile(ctx context.Context, code string) (*oauth.Profile, error) {
	return f.profile, f.err
}

type publishedEvent struct {
	ctx context.Context
	key string
}

// capturePub records the context each event was handed to the broker on.
type capturePub struct {
	events chan publishedEvent
}

func newCapturePub() *capturePub {
	return &capturePub{events: make(chan publishedEvent, 4)}
}

func (p *capturePub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	p.events <- publishedEvent{ctx: ctx, key: key}
	return nil
}

func (p *capturePub) Close() error { return nil }

// fakeLimiter counts hits per key in memory, standing in for the Redis
// fixed-window counter.
type fakeLimiter struct {
	mu   sync.Mutex
	hits map[string]int
	err  error
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits = make(map[string]int)
	}
	l.hits[key]++
	return l.hits[key] <= limit, nil
}

// failingStore passes everything through except email+role lookups.
type failingStore struct {
	*repo.MemoryStore
}

func (s *failingStore) FindUserByEmailAndRole(ctx context.Context, email, role string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

type testEnv struct {
	T       *testing.T
	Store   *repo.MemoryStore
	Mail    *captureMailer
	Handler *api.Handler
	Router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := log.Init(false); err != nil {
		t.Fatalf("log init: %v", err)
	}

	cfg := config.Config{
		JWTSecret:        "test_secret",
		TokenTTLDays:     30,
		ResetMaxAttempts: 3,
		FrontendURL:      frontendURL,
		StateSecret:      "test_state_secret",
	}
	store := repo.NewMemoryStore()
	mailer := &captureMailer{}

	h := api.NewHandler(cfg, store, mailer, queue.NewNoop(), nil)

	gin.SetMode(gin.TestMode)
	r := api.NewRouter(h)

	return &testEnv{T: t, Store: store, Mail: mailer, Handler: h, Router: r}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its bearer token.
func (e *testEnv) register(name, email, password, role string) string {
	e.T.Helper()
	w := e.do("POST", "/auth/register",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`","userType":"`+role+`","contact":"123"}`, nil)
	if w.Code != 201 {
		e.T.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		e.T.Fatalf("register resp: %v body=%s", err, w.Body.String())
	}
	return resp.Token
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}
