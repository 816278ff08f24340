package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	fb "golang.org/x/oauth2/facebook"

	apperrors "github.com/examify/auth-service/internal/errors"
)

const graphProfileURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email"

type Facebook struct {
	cfg        *oauth2.Config
	profileURL string
}

var _ Provider = (*Facebook)(nil)

func NewFacebook(appID, appSecret, redirectURI string) *Facebook {
	return &Facebook{
		cfg: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"email"},
			Endpoint:     fb.Endpoint,
		},
		profileURL: graphProfileURL,
	}
}

func (f *Facebook) Name() string { return "facebook" }

func (f *Facebook) AuthURL(state string) string {
	return f.cfg.AuthCodeURL(state)
}

// FetchProfile exchanges the code and reads id/name/email from the Graph API;
// Facebook issues no id_token, so the profile endpoint is the source of truth.
func (f *Facebook) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook exchange: %v", apperrors.ErrUpstream, err)
	}

	client := f.cfg.Client(ctx, tok)
	resp, err := client.Get(f.profileURL)
	if err != nil {
		return nil, fmt.Errorf("%w: facebook profile: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: facebook profile status %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: decode facebook profile: %v", apperrors.ErrUpstream, err)
	}
	if me.Email == "" {
		return nil, apperrors.ErrMissingEmail
	}

	return &Profile{Provider: f.Name(), ID: me.ID, Email: me.Email, Name: me.Name}, nil
}
