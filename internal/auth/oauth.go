package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/bitbucket"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/gitlab"
	"golang.org/x/oauth2/microsoft"

	"github.com/devtime/server/internal/config"
	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/identity"
	"github.com/devtime/server/internal/models"
)

// OAuthService logs users in through an identity provider and feeds
// the verified email list into identity unification.
type OAuthService struct {
	configs  map[string]*oauth2.Config
	store    db.Store
	identity *identity.Service
	logger   *logrus.Logger
}

func NewOAuthService(cfg config.OAuthConfig, store db.Store, ident *identity.Service, logger *logrus.Logger) *OAuthService {
	return &OAuthService{
		configs: map[string]*oauth2.Config{
			"github": {
				ClientID:     cfg.GitHub.ClientID,
				ClientSecret: cfg.GitHub.ClientSecret,
				RedirectURL:  cfg.GitHub.RedirectURL,
				Endpoint:     github.Endpoint,
				Scopes:       []string{"user:email"},
			},
			"gitlab": {
				ClientID:     cfg.GitLab.ClientID,
				ClientSecret: cfg.GitLab.ClientSecret,
				RedirectURL:  cfg.GitLab.RedirectURL,
				Endpoint:     gitlab.Endpoint,
				Scopes:       []string{"read_user"},
			},
			"bitbucket": {
				ClientID:     cfg.Bitbucket.ClientID,
				ClientSecret: cfg.Bitbucket.ClientSecret,
				RedirectURL:  cfg.Bitbucket.RedirectURL,
				Endpoint:     bitbucket.Endpoint,
				Scopes:       []string{"email"},
			},
			"microsoft": {
				ClientID:     cfg.Microsoft.ClientID,
				ClientSecret: cfg.Microsoft.ClientSecret,
				RedirectURL:  cfg.Microsoft.RedirectURL,
				Endpoint:     microsoft.LiveConnectEndpoint,
				Scopes:       []string{"wl.emails"},
			},
		},
		store:    store,
		identity: ident,
		logger:   logger,
	}
}

// LoginURL returns the provider's consent page URL.
func (s *OAuthService) LoginURL(provider, state string) (string, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return "", apperrors.NewFieldError("provider", "invalid")
	}
	return cfg.AuthCodeURL(state), nil
}

// HandleCallback exchanges the authorization code, imports the
// verified email list, and resolves or creates the platform user.
func (s *OAuthService) HandleCallback(ctx context.Context, provider, code string) (*models.User, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return nil, apperrors.NewFieldError("provider", "invalid")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewUpstreamError("oauth code exchange failed", err)
	}

	emails, err := fetchEmails(ctx, provider, cfg.Client(ctx, token))
	if err != nil {
		return nil, apperrors.NewUpstreamError("fetching provider emails failed", err)
	}
	if len(emails) == 0 {
		return nil, apperrors.NewUpstreamError("provider returned no verified emails", nil)
	}

	user, err := s.resolveUser(ctx, provider, emails)
	if err != nil {
		return nil, err
	}

	if err := s.identity.LinkEmails(ctx, user.ID, emails); err != nil {
		return nil, err
	}

	return user, nil
}

// resolveUser finds the user any of the emails already links to, or
// creates one named after the primary email.
func (s *OAuthService) resolveUser(ctx context.Context, provider string, emails []string) (*models.User, error) {
	for _, email := range emails {
		user, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	user := &models.User{
		Username: emails[0],
		Role:     models.RoleUser,
	}
	err := s.store.CreateUser(ctx, user)
	if err == db.ErrDuplicate {
		return nil, apperrors.NewConflictError("username already taken: "+user.Username, nil)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Infof("created user %q from %s login", user.Username, provider)
	return user, nil
}

func fetchEmails(ctx context.Context, provider string, client *http.Client) ([]string, error) {
	switch provider {
	case "github":
		var entries []struct {
			Email    string `json:"email"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &entries); err != nil {
			return nil, err
		}
		var emails []string
		for _, e := range entries {
			if e.Verified {
				emails = append(emails, e.Email)
			}
		}
		return emails, nil
	case "gitlab":
		var user struct {
			Email string `json:"email"`
		}
		if err := getJSON(ctx, client, "https://gitlab.com/api/v4/user", &user); err != nil {
			return nil, err
		}
		return nonEmpty(user.Email), nil
	case "bitbucket":
		var resp struct {
			Values []struct {
				Email     string `json:"email"`
				Confirmed bool   `json:"is_confirmed"`
			} `json:"values"`
		}
		if err := getJSON(ctx, client, "https://api.bitbucket.org/2.0/user/emails", &resp); err != nil {
			return nil, err
		}
		var emails []string
		for _, e := range resp.Values {
			if e.Confirmed {
				emails = append(emails, e.Email)
			}
		}
		return emails, nil
	case "microsoft":
		var me struct {
			Emails struct {
				Account   string `json:"account"`
				Preferred string `json:"preferred"`
			} `json:"emails"`
		}
		if err := getJSON(ctx, client, "https://apis.live.net/v5.0/me", &me); err != nil {
			return nil, err
		}
		emails := nonEmpty(me.Emails.Preferred)
		if me.Emails.Account != "" && !strings.EqualFold(me.Emails.Account, me.Emails.Preferred) {
			emails = append(emails, me.Emails.Account)
		}
		return emails, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func nonEmpty(email string) []string {
	if email == "" {
		return nil
	}
	return []string{email}
}
