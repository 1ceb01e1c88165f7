package config

// OAuthProvider holds one provider's client credentials.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig holds credentials for every supported identity provider.
type OAuthConfig struct {
	GitHub    OAuthProvider
	GitLab    OAuthProvider
	Bitbucket OAuthProvider
	Microsoft OAuthProvider
}

func loadOAuth() OAuthConfig {
	return OAuthConfig{
		GitHub:    loadProvider("GITHUB"),
		GitLab:    loadProvider("GITLAB"),
		Bitbucket: loadProvider("BITBUCKET"),
		Microsoft: loadProvider("MICROSOFT"),
	}
}

func loadProvider(prefix string) OAuthProvider {
	return OAuthProvider{
		ClientID:     getEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getEnv(prefix+"_CLIENT_SECRET", ""),
		RedirectURL:  getEnv(prefix+"_REDIRECT_URL", ""),
	}
}
