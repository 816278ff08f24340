package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func Test_Register_Login_Me(t *testing.T) {
	env := newTestEnv(t)

	// register, then login with a wrong password
	w := env.do("POST", "/auth/register",
		`{"name":"A","email":"a@x.com","password":"p1","userType":"examinee","contact":"123"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register code=%d body=%s", w.Code, w.Body.String())
	}
	var reg struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"userType"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil || reg.Token == "" || reg.ID == "" {
		t.Fatalf("register resp: %v body=%s", err, w.Body.String())
	}
	if reg.Role != "examinee" || reg.Email != "a@x.com" {
		t.Fatalf("summary mismatch: %+v", reg)
	}

	w = env.do("POST", "/auth/login", `{"email":"a@x.com","password":"wrong","userType":"examinee"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: code=%d body=%s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/auth/login", `{"email":"a@x.com","password":"p1","userType":"examinee"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login code=%d body=%s", w.Code, w.Body.String())
	}
	var lr struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &lr)
	if lr.Token == "" {
		t.Fatalf("no token in login resp: %s", w.Body.String())
	}

	w = env.do("GET", "/auth/me", "", bearer(lr.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("me code=%d body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Fatal("me response leaks the password hash")
	}
}

func Test_Register_PublishOutlivesRequest(t *testing.T) {
	env := newTestEnv(t)
	pub := newCapturePub()
	env.Handler.Events = pub

	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register",
		strings.NewReader(`{"name":"A","email":"a@x.com","password":"p1","userType":"examinee","contact":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	env.Router.ServeHTTP(w, req.WithContext(ctx))
	// the server cancels the request context once the response is written
	cancel()
	if w.Code != http.StatusCreated {
		t.Fatalf("register code=%d body=%s", w.Code, w.Body.String())
	}

	select {
	case ev := <-pub.events:
		if ev.key != "user.registered" {
			t.Fatalf("event key=%q", ev.key)
		}
		if err := ev.ctx.Err(); err != nil {
			t.Fatalf("publish context canceled with the request: %v", err)
		}
		if _, ok := ev.ctx.Deadline(); !ok {
			t.Fatal("publish context carries no deadline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
}

func Test_Login_StoreDown(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")
	env.Handler.Store = &failingStore{MemoryStore: env.Store}

	w := env.do("POST", "/auth/login", `{"email":"a@x.com","password":"p1","userType":"examinee"}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure should not read as bad credentials: code=%d body=%s", w.Code, w.Body.String())
	}
}

func Test_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.register("A", "dup@x.com", "p1", "examinee")
	// same email, different role and case: still a conflict
	w := env.do("POST", "/auth/register",
		`{"name":"B","email":"Dup@X.com","password":"p2","userType":"examiner","contact":"456"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: code=%d body=%s", w.Code, w.Body.String())
	}
}

func Test_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	cases := []string{
		`{"email":"x@x.com","password":"p","userType":"examinee","contact":"1"}`,        // no name
		`{"name":"A","password":"p","userType":"examinee","contact":"1"}`,               // no email
		`{"name":"A","email":"x@x.com","userType":"examinee","contact":"1"}`,            // no password
		`{"name":"A","email":"x@x.com","password":"p","contact":"1"}`,                   // no userType
		`{"name":"A","email":"x@x.com","password":"p","userType":"examinee"}`,           // no contact
		`{"name":"A","email":"x@x.com","password":"p","userType":"boss","contact":"1"}`, // bad role
		`{"name":"A","email":"nodomain","password":"p","userType":"examinee","contact":"1"}`,
		`not json`,
	}
	for i, body := range cases {
		w := env.do("POST", "/auth/register", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: code=%d body=%s", i, w.Code, w.Body.String())
		}
	}
}

func Test_Login_WrongRole(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")

	// correct password, wrong declared role: still invalid credentials
	w := env.do("POST", "/auth/login", `{"email":"a@x.com","password":"p1","userType":"examiner"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong role login: code=%d body=%s", w.Code, w.Body.String())
	}
}

func resetTokenFromLink(t *testing.T, link string) string {
	t.Helper()
	prefix := frontendURL + "/reset-password/"
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("unexpected reset link: %s", link)
	}
	return strings.TrimPrefix(link, prefix)
}

func Test_ForgotReset_Flow(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "old-pass", "examinee")

	w := env.do("POST", "/auth/forgot-password", `{"email":"a@x.com"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("forgot: %d %s", w.Code, w.Body.String())
	}
	if len(env.Mail.links) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(env.Mail.links))
	}
	token := resetTokenFromLink(t, env.Mail.links[0])

	w = env.do("POST", "/auth/reset-password", `{"token":"`+token+`","password":"new-pass"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d %s", w.Code, w.Body.String())
	}

	// old password is gone, new one works
	w = env.do("POST", "/auth/login", `{"email":"a@x.com","password":"old-pass","userType":"examinee"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("old password after reset: %d", w.Code)
	}
	w = env.do("POST", "/auth/login", `{"email":"a@x.com","password":"new-pass","userType":"examinee"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("new password after reset: %d %s", w.Code, w.Body.String())
	}

	// a token is good at most once
	w = env.do("POST", "/auth/reset-password", `{"token":"`+token+`","password":"third"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reused token: %d %s", w.Code, w.Body.String())
	}
}

func Test_Forgot_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("POST", "/auth/forgot-password", `{"email":"ghost@x.com"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email: %d %s", w.Code, w.Body.String())
	}
}

func Test_Forgot_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")

	for i := 0; i < 3; i++ {
		w := env.do("POST", "/auth/forgot-password", `{"email":"a@x.com"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: %d %s", i+1, w.Code, w.Body.String())
		}
	}
	w := env.do("POST", "/auth/forgot-password", `{"email":"a@x.com"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt 4: %d %s", w.Code, w.Body.String())
	}
}

func Test_Forgot_WindowExpires(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")

	u, err := env.Store.FindUserByEmail(context.Background(), "a@x.com")
	if err != nil || u == nil {
		t.Fatalf("lookup: %v", err)
	}
	// ceiling reached, but the last attempt was a day ago
	dayAgo := time.Now().Add(-25 * time.Hour)
	if err := env.Store.SetResetState(context.Background(), u.ID.Hex(), "stale", dayAgo.Add(5*time.Minute), 3, dayAgo); err != nil {
		t.Fatal(err)
	}

	w := env.do("POST", "/auth/forgot-password", `{"email":"a@x.com"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stale window should admit a fresh attempt: %d %s", w.Code, w.Body.String())
	}
}

func Test_Reset_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")

	u, _ := env.Store.FindUserByEmail(context.Background(), "a@x.com")
	now := time.Now()
	if err := env.Store.SetResetState(context.Background(), u.ID.Hex(), "tok-exp", now.Add(-time.Second), 1, now); err != nil {
		t.Fatal(err)
	}

	w := env.do("POST", "/auth/reset-password", `{"token":"tok-exp","password":"new"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expired token: %d %s", w.Code, w.Body.String())
	}
}

func Test_Forgot_MailFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register("A", "a@x.com", "p1", "examinee")
	env.Mail.fail = true

	w := env.do("POST", "/auth/forgot-password", `{"email":"a@x.com"}`, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("mail failure: %d %s", w.Code, w.Body.String())
	}

	// the token was issued before the send failed and is still live
	u, _ := env.Store.FindUserByEmail(context.Background(), "a@x.com")
	if u.ResetToken == "" {
		t.Fatal("reset token should remain issued after a failed send")
	}
}

func Test_Healthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do("GET", "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
}
