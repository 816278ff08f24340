package oauth

import "context"

// Profile is the normalized identity handed back by a provider after the
// callback exchange. Email is the joining key for account linking; ID is the
// provider-scoped subject.
type Profile struct {
	Provider string
	ID       string
	Email    string
	Name     string
}

// Provider drives the two-step OAuth protocol: redirect with a signed state,
// then exchange the callback code for a verified profile.
type Provider interface {
	Name() string
	AuthURL(state string) string
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}
