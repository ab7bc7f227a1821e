package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"autotag/internal/config"
	serr "autotag/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
worker:
  interpreter: /usr/bin/python3
  script: /opt/imgtag/imgtag.py
  detail_level: high
  timeout: 15m
credential:
  env_var: IMGTAG_KEY
discovery:
  extensions: [".jpg", ".png"]
  skip_content_type: true
resolution:
  strategies: ["mdls", "xattr"]
  concurrency: 4
  command_timeout: 2s
  embedded_keywords: true
index:
  top_limit: 5
logging:
  level: debug
  json: true
`
	invalidSyntaxYAML = `
worker:
  script: "/opt/imgtag.py
 detail_level: [
`
	invalidDetailYAML = `
worker:
  detail_level: extreme
`
	invalidStrategyYAML = `
resolution:
  strategies: ["xattr", "exiftool"]
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid config", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "/usr/bin/python3", cfg.Worker.Interpreter)
		assert.Equal(t, "/opt/imgtag/imgtag.py", cfg.Worker.Script)
		assert.Equal(t, "high", cfg.Worker.DetailLevel)
		assert.Equal(t, 15*time.Minute, cfg.Worker.Timeout)
		assert.Equal(t, "IMGTAG_KEY", cfg.Credential.EnvVar)
		assert.Equal(t, []string{".jpg", ".png"}, cfg.Discovery.Extensions)
		assert.True(t, cfg.Discovery.SkipContentType)
		assert.Equal(t, []string{"mdls", "xattr"}, cfg.Resolution.Strategies)
		assert.Equal(t, 4, cfg.Concurrency())
		assert.Equal(t, 2*time.Second, cfg.Resolution.CommandTimeout)
		assert.Equal(t, []string{"mdls", "xattr", "embedded"}, cfg.ActiveStrategies())
		assert.Equal(t, 5, cfg.Index.TopLimit)
		assert.True(t, cfg.Logging.JSON)

		// Unset fields keep their defaults
		assert.Equal(t, config.TagAttribute, cfg.Resolution.Attribute)
		assert.Equal(t, 5, cfg.Index.FilesPerTag)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
		require.NoError(t, err, "Loading non-existent file should return default config, not an error")

		defaultCfg := config.New()
		assert.Equal(t, defaultCfg, cfg)
		assert.Equal(t, config.DefaultExtensions, cfg.Discovery.Extensions)
		assert.Equal(t, config.DefaultStrategies, cfg.ActiveStrategies())
		assert.Equal(t, config.DefaultTopLimit, cfg.Index.TopLimit)
		assert.Equal(t, "OPENAI_API_KEY", cfg.Credential.EnvVar)
	})

	t.Run("load file with invalid YAML syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("load file with invalid detail level", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidDetailYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "invalid detail level")
	})

	t.Run("load file with unknown strategy", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidStrategyYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown resolution strategy: exiftool")
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *config.Config) {}},
		{name: "high detail", mutate: func(c *config.Config) { c.Worker.DetailLevel = "high" }},
		{name: "negative timeout", mutate: func(c *config.Config) { c.Worker.Timeout = -time.Second }, wantErr: "worker timeout"},
		{name: "no env var", mutate: func(c *config.Config) { c.Credential.EnvVar = "" }, wantErr: "env_var"},
		{name: "no extensions", mutate: func(c *config.Config) { c.Discovery.Extensions = nil }, wantErr: "extension"},
		{name: "extension without dot", mutate: func(c *config.Config) { c.Discovery.Extensions = []string{"jpg"} }, wantErr: "must start with a dot"},
		{name: "no strategies", mutate: func(c *config.Config) { c.Resolution.Strategies = nil }, wantErr: "strategy"},
		{name: "duplicate strategy", mutate: func(c *config.Config) { c.Resolution.Strategies = []string{"xattr", "xattr"} }, wantErr: "duplicate"},
		{name: "negative concurrency", mutate: func(c *config.Config) { c.Resolution.Concurrency = -1 }, wantErr: "concurrency"},
		{name: "zero top limit", mutate: func(c *config.Config) { c.Index.TopLimit = 0 }, wantErr: "top tag limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.New()
	cfg.Worker.Script = "/srv/worker.py"
	cfg.Index.TopLimit = 7

	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/worker.py", loaded.Worker.Script)
	assert.Equal(t, 7, loaded.Index.TopLimit)
}

func TestConcurrencyDefault(t *testing.T) {
	cfg := config.New()
	assert.Greater(t, cfg.Concurrency(), 0)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config"), config.ExpandHome("~/.config"))
	assert.Equal(t, "/abs/path", config.ExpandHome("/abs/path"))
	assert.Equal(t, "~other/x", config.ExpandHome("~other/x"))
}

func TestResolveCredential(t *testing.T) {
	const envVar = "AUTOTAG_TEST_API_KEY"

	newCfg := func(files ...string) *config.Config {
		cfg := config.New()
		cfg.Credential.EnvVar = envVar
		cfg.Credential.EnvFiles = files
		return cfg
	}

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(envVar, "  sk-env  ")
		key, err := newCfg().ResolveCredential()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", key)
	})

	t.Run("from dotenv file", func(t *testing.T) {
		t.Setenv(envVar, "")
		dir := t.TempDir()
		missing := filepath.Join(dir, "missing.env")
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte(envVar+"=sk-file\n"), 0600))

		key, err := newCfg(missing, envFile).ResolveCredential()
		require.NoError(t, err)
		assert.Equal(t, "sk-file", key)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv(envVar, "sk-env")
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte(envVar+"=sk-file\n"), 0600))

		key, err := newCfg(envFile).ResolveCredential()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", key)
	})

	t.Run("placeholder counts as missing", func(t *testing.T) {
		t.Setenv(envVar, "")
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte(envVar+"=your_openai_api_key_here\n"), 0600))

		_, err := newCfg(envFile).ResolveCredential()
		require.Error(t, err)
		assert.True(t, serr.IsCredentialMissing(err))
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(envVar, "")
		_, err := newCfg().ResolveCredential()
		require.Error(t, err)
		assert.True(t, serr.IsCredentialMissing(err))
		assert.Contains(t, err.Error(), envVar)
	})
}
