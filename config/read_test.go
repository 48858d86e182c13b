package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestReadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "percentage", cfg.Assessment.Scoring.Policy)
	assert.Equal(t, 2.0, cfg.Assessment.Scoring.PointsPerCorrect)
	assert.Equal(t, "NG", cfg.Authentication.DefaultRegion)
	assert.Equal(t, 5, cfg.Authentication.MaxLoginAttempts)
}

func TestReadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "assessment:\n  scoring:\n    policy: percentage\n")
	t.Setenv("PMS_ASSESSMENT_SCORING_POLICY", "fixed_weight")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "fixed_weight", cfg.Assessment.Scoring.Policy)
}

func TestReadConfigRejectsUnknownPolicy(t *testing.T) {
	dir := writeConfig(t, "assessment:\n  scoring:\n    policy: curve\n")

	_, err := ReadConfig(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidScoringPolicy)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "zero config is valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "bad paseto mode", mutate: func(c *Config) { c.Authentication.Paseto.Mode = "v2" }, wantErr: ErrInvalidPasetoMode},
		{name: "fixed weight accepted", mutate: func(c *Config) { c.Assessment.Scoring.Policy = "FIXED_WEIGHT" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
