package config

type OIDCConfig interface {
	SSOEnabled() bool
	GetOIDCIssuerURL() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRedirectURL() string
	GetOIDCRoleClaim() string
}

type OIDCVars struct{}

var _ OIDCConfig = OIDCVars{}

// SSOEnabled reports whether the optional OIDC single sign-on login is
// configured. Credentials login always remains available.
func (v OIDCVars) SSOEnabled() bool {
	return v.GetOIDCIssuerURL() != "" && v.GetOIDCClientID() != "" && v.GetOIDCClientSecret() != ""
}

func (OIDCVars) GetOIDCIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "")
}

func (OIDCVars) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (OIDCVars) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (OIDCVars) GetOIDCRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "")
}

// GetOIDCRoleClaim names the ID-token claim carrying the admin role.
func (OIDCVars) GetOIDCRoleClaim() string {
	return GetEnv("OIDC_ROLE_CLAIM", "role")
}
