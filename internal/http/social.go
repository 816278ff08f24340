package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examify/auth-service/internal/domain"
	apperrors "github.com/examify/auth-service/internal/errors"
	"github.com/examify/auth-service/internal/log"
	"github.com/examify/auth-service/internal/oauth"
	"github.com/examify/auth-service/internal/queue"
	"github.com/examify/auth-service/internal/security"
)

// SocialRedirect starts the provider flow: signed state, 302 to the consent
// screen.
func (h *Handler) SocialRedirect(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := h.Providers[provider]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}
		state := h.State.Sign(uuid.NewString())
		c.Redirect(http.StatusFound, p.AuthURL(state))
	}
}

// SocialCallback finishes the flow: verify state, exchange the code, link the
// profile to a local account and hand the frontend a bearer token. Every
// failure lands on the login page with an error flag; the provider's reason
// stays in the logs.
func (h *Handler) SocialCallback(provider string) gin.HandlerFunc {
	loginURL := h.FrontendURL + "/login?error=auth_failed"
	return func(c *gin.Context) {
		p, ok := h.Providers[provider]
		if !ok {
			c.Redirect(http.StatusFound, loginURL)
			return
		}
		if !h.State.Verify(c.Query("state")) {
			log.Errorf("social callback provider=%s: bad state", provider)
			c.Redirect(http.StatusFound, loginURL)
			return
		}
		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, loginURL)
			return
		}

		profile, err := p.FetchProfile(c.Request.Context(), code)
		if err != nil {
			log.Errorf("social callback provider=%s: %v", provider, err)
			c.Redirect(http.StatusFound, loginURL)
			return
		}

		u, err := h.linkSocialProfile(c.Request.Context(), profile)
		if err != nil {
			log.Errorf("social link provider=%s: %v", provider, err)
			c.Redirect(http.StatusFound, loginURL)
			return
		}

		tok, err := security.MakeAccess(h.JWTSecret, u.ID.Hex(), h.TokenTTL)
		if err != nil {
			c.Redirect(http.StatusFound, loginURL)
			return
		}

		h.publish(c, "user.loggedin",
			queue.UserLoggedIn{UserID: u.ID.Hex(), Email: u.Email})

		c.Redirect(http.StatusFound, h.FrontendURL+"/social-auth-success?token="+tok)
	}
}

// linkSocialProfile resolves a verified external profile to a local account.
// Email is the joining key: an existing account wins no matter which provider
// started the flow, so two providers sharing an email collapse into one
// account. A new account defaults to examinee with a placeholder password
// derived from the provider id; no local login path ever learns that value.
func (h *Handler) linkSocialProfile(ctx context.Context, p *oauth.Profile) (*domain.User, error) {
	if p.Email == "" {
		return nil, apperrors.ErrMissingEmail
	}
	email := normalizeEmail(p.Email)

	u, err := h.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	hash, err := security.HashPassword(p.ID)
	if err != nil {
		return nil, err
	}
	nu := &domain.User{
		Name:         p.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleExaminee,
		Contact:      email,
	}
	switch p.Provider {
	case "google":
		nu.GoogleID = p.ID
	case "facebook":
		nu.FacebookID = p.ID
	}

	if err := h.Store.CreateUser(ctx, nu); err != nil {
		// lost a race with a concurrent signup for the same email
		if err == apperrors.ErrEmailTaken {
			return h.Store.FindUserByEmail(ctx, email)
		}
		return nil, err
	}

	log.Infof("social account created provider=%s email_hash=%s", p.Provider, log.EmailHash(email))
	h.publishCtx(ctx, "user.registered",
		queue.UserRegistered{UserID: nu.ID.Hex(), Email: nu.Email, Role: nu.Role}, "")

	return nu, nil
}
