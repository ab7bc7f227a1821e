package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	serr "autotag/internal/errors"
)

// placeholderKey is the value written by the env bootstrap template.
const placeholderKey = "your_openai_api_key_here"

// ResolveCredential returns the worker API key. The process environment
// wins over dotenv files, which are consulted in order.
func (c *Config) ResolveCredential() (string, error) {
	if v := cleanCredential(os.Getenv(c.Credential.EnvVar)); v != "" {
		return v, nil
	}

	for _, file := range c.Credential.EnvFiles {
		values, err := godotenv.Read(ExpandHome(file))
		if err != nil {
			continue
		}
		if v := cleanCredential(values[c.Credential.EnvVar]); v != "" {
			return v, nil
		}
	}

	return "", serr.NewConfigError("no API credential configured", c.Credential.EnvVar, serr.CredentialMissing, nil)
}

func cleanCredential(v string) string {
	v = strings.TrimSpace(v)
	if v == placeholderKey {
		return ""
	}
	return v
}
