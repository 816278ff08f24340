package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examify/auth-service/internal/config"
	"github.com/examify/auth-service/internal/domain"
	apperrors "github.com/examify/auth-service/internal/errors"
	"github.com/examify/auth-service/internal/log"
	"github.com/examify/auth-service/internal/mail"
	"github.com/examify/auth-service/internal/oauth"
	"github.com/examify/auth-service/internal/queue"
	"github.com/examify/auth-service/internal/repo"
	"github.com/examify/auth-service/internal/security"
)

const (
	resetTokenTTL = 5 * time.Minute
	resetWindow   = 24 * time.Hour

	eventsExchange = "auth.events"
)

// Limiter is the slice of the Redis wrapper the rate-limit middleware uses.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Handler struct {
	Store  repo.Store
	Mail   mail.Sender
	Events queue.Publisher
	Redis  Limiter

	JWTSecret        string
	TokenTTL         time.Duration
	ResetMaxAttempts int
	RateLimitPerMin  int
	FrontendURL      string

	State     *oauth.StateSigner
	Providers map[string]oauth.Provider
}

func NewHandler(cfg config.Config, store repo.Store, mailer mail.Sender, pub queue.Publisher, rds *repo.Redis, providers ...oauth.Provider) *Handler {
	h := &Handler{
		Store:            store,
		Mail:             mailer,
		Events:           pub,
		JWTSecret:        cfg.JWTSecret,
		TokenTTL:         time.Duration(cfg.TokenTTLDays) * 24 * time.Hour,
		ResetMaxAttempts: cfg.ResetMaxAttempts,
		RateLimitPerMin:  cfg.RateLimitPerMin,
		FrontendURL:      strings.TrimRight(cfg.FrontendURL, "/"),
		State:            oauth.NewStateSigner(cfg.StateSecret),
		Providers:        make(map[string]oauth.Provider, len(providers)),
	}
	for _, p := range providers {
		h.Providers[p.Name()] = p
	}
	// a typed-nil *repo.Redis must stay a nil Limiter
	if rds != nil {
		h.Redis = rds
	}
	return h
}

func errJSON(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), gin.H{"error": err.Error()})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// publish hands an event to the broker off the request path. The request
// context is canceled as soon as the response is written, so the goroutine
// gets a detached copy with its own deadline.
func (h *Handler) publish(c *gin.Context, key string, event any) {
	h.publishCtx(c.Request.Context(), key, event, requestID(c))
}

func (h *Handler) publishCtx(ctx context.Context, key string, event any, reqID string) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	go func() {
		defer cancel()
		if err := h.Events.Publish(pctx, eventsExchange, key, event, reqID); err != nil {
			log.Errorf("publish %s: %v", key, err)
		}
	}()
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	Contact  string `json:"contact"`

	// Examiner fields
	ExaminerType string `json:"examinerType"`
	Credentials  string `json:"credentials"`

	// Examinee fields
	ExamineeType   string   `json:"examineeType"`
	EducationLevel string   `json:"educationLevel"`
	InstituteName  string   `json:"instituteName"`
	RollNumber     string   `json:"rollNumber"`
	Major          string   `json:"major"`
	YearSemester   string   `json:"yearSemester"`
	Qualification  string   `json:"qualification"`
	Experience     string   `json:"experience"`
	Company        string   `json:"company"`
	Industry       string   `json:"industry"`
	Skills         []string `json:"skills"`
}

type authResp struct {
	domain.Summary
	Token string `json:"token"`
}

// roleProfile keeps only the group matching the declared role; fields for the
// other role are dropped at the boundary instead of stored opaquely.
func roleProfile(in registerReq, u *domain.User) {
	switch u.Role {
	case domain.RoleExaminer:
		if in.ExaminerType != "" || in.Credentials != "" {
			u.Examiner = &domain.ExaminerProfile{
				ExaminerType: in.ExaminerType,
				Credentials:  in.Credentials,
			}
		}
	case domain.RoleExaminee:
		p := domain.ExamineeProfile{
			ExamineeType:   in.ExamineeType,
			EducationLevel: in.EducationLevel,
			InstituteName:  in.InstituteName,
			RollNumber:     in.RollNumber,
			Major:          in.Major,
			YearSemester:   in.YearSemester,
			Qualification:  in.Qualification,
			Experience:     in.Experience,
			Company:        in.Company,
			Industry:       in.Industry,
			Skills:         in.Skills,
		}
		if p.ExamineeType != "" || p.EducationLevel != "" || p.InstituteName != "" ||
			p.RollNumber != "" || p.Major != "" || p.YearSemester != "" ||
			p.Qualification != "" || p.Experience != "" || p.Company != "" ||
			p.Industry != "" || len(p.Skills) > 0 {
			u.Examinee = &p
		}
	}
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 201 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := normalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" || in.UserType == "" || in.Contact == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide all required fields"})
		return
	}
	if !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if !domain.ValidRole(in.UserType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user type"})
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}
	u := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         in.UserType,
		Contact:      strings.TrimSpace(in.Contact),
	}
	roleProfile(in, u)

	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		errJSON(c, err)
		return
	}

	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), h.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	log.Infof("user registered role=%s email_hash=%s", u.Role, log.EmailHash(u.Email))
	h.publish(c, "user.registered",
		queue.UserRegistered{UserID: u.ID.Hex(), Email: u.Email, Role: u.Role})

	c.JSON(http.StatusCreated, authResp{Summary: u.Summary(), Token: tok})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := normalizeEmail(in.Email)

	// the declared role is part of the credential pair: a right password with
	// the wrong role reads as invalid credentials, not as a role error
	u, err := h.Store.FindUserByEmailAndRole(c.Request.Context(), email, in.UserType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil || !security.CheckPassword(u.PasswordHash, in.Password) {
		errJSON(c, apperrors.ErrInvalidCredentials)
		return
	}

	tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), h.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	h.publish(c, "user.loggedin",
		queue.UserLoggedIn{UserID: u.ID.Hex(), Email: u.Email})

	c.JSON(http.StatusOK, authResp{Summary: u.Summary(), Token: tok})
}

type forgotReq struct {
	Email string `json:"email"`
}

// ForgotPassword godoc
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body forgotReq true "forgot"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var in forgotReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := normalizeEmail(in.Email)

	u, err := h.Store.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		errJSON(c, apperrors.ErrUserNotFound)
		return
	}

	// attempts only count within a day of the last one; an older window is stale
	attempts := u.ResetAttempts
	if u.LastResetAttempt == nil || time.Since(*u.LastResetAttempt) >= resetWindow {
		attempts = 0
	}
	if attempts >= h.ResetMaxAttempts {
		errJSON(c, apperrors.ErrResetRateLimited)
		return
	}

	token, err := security.NewResetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	now := time.Now()
	if err := h.Store.SetResetState(c.Request.Context(), u.ID.Hex(), token, now.Add(resetTokenTTL), attempts+1, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	link := h.FrontendURL + "/reset-password/" + token
	if err := h.Mail.SendPasswordReset(u.Email, link); err != nil {
		// token stays issued; a retry costs another rate-limit slot
		log.Errorf("reset mail send failed email_hash=%s: %v", log.EmailHash(u.Email), err)
		errJSON(c, apperrors.ErrUpstream)
		return
	}

	log.Infof("password reset requested email_hash=%s attempts=%d", log.EmailHash(u.Email), attempts+1)
	h.publish(c, "password.reset.requested",
		queue.PasswordResetRequested{UserID: u.ID.Hex()})

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword godoc
// @Summary Reset password with a token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body resetReq true "reset"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetReq
	if err := c.ShouldBindJSON(&in); err != nil || in.Token == "" || in.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}
	u, err := h.Store.ConsumeResetToken(c.Request.Context(), in.Token, hash, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}
	if u == nil {
		errJSON(c, apperrors.ErrResetInvalid)
		return
	}

	log.Infof("password reset completed email_hash=%s", log.EmailHash(u.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	u := authUser(c)
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
