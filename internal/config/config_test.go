package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/stations.csv", cfg.Station.DataPath)
	assert.Equal(t, "id", cfg.Station.IDColumn)
	assert.Equal(t, "data/parcels", cfg.Parcel.BaseDir)
	assert.Equal(t, 0.003, cfg.Parcel.RadiusDegrees)
	assert.Equal(t, 5, cfg.Recommend.TopK)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, float64(30), cfg.LLM.TimeoutSecs)
	assert.True(t, cfg.LLM.ForceJSON)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Zero(t, cfg.LLM.RPS)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	yaml := `
server:
  port: 9000
parcel:
  radius_degrees: 0.005
llm:
  model: gpt-4o
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 0.005, cfg.Parcel.RadiusDegrees)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Recommend.TopK)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STATION_SERVER_PORT", "9090")
	t.Setenv("STATION_LLM_API_KEY", "sk-env")
	t.Setenv("STATION_LLM_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, 2.5, cfg.LLM.RPS)
}

func TestLoadRepairsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	yaml := `
parcel:
  radius_degrees: -1
llm:
  timeout_secs: 0
  rps: -3
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.003, cfg.Parcel.RadiusDegrees)
	assert.Equal(t, float64(30), cfg.LLM.TimeoutSecs)
	assert.Zero(t, cfg.LLM.RPS)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope"}))
}
