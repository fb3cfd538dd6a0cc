package config

type Config interface {
	EnvConfig
	SessionConfig
	OIDCConfig
}

type mainConfig struct {
	EnvVars
	SessionVars
	OIDCVars
}

func New() Config {
	return mainConfig{}
}
