package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/implicit/plot"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 300, cfg.Resolution)
	assert.Equal(t, plot.DefaultDomain, cfg.Domain)
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.Delay())
	assert.Len(t, cfg.Levels.Static, 21)
	assert.Len(t, cfg.Levels.Animation, 11)
	assert.True(t, cfg.AllowedResolution(600))
	assert.False(t, cfg.AllowedResolution(250))
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("IMPLICIT_ADDR", "")
	t.Setenv("IMPLICIT_LOG_LEVEL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should give defaults (-want +got):\n%s", diff)
	}
}

func TestLoadPartial(t *testing.T) {
	t.Setenv("IMPLICIT_ADDR", "")
	t.Setenv("IMPLICIT_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "implicit.yaml")
	src := `
domain:
  x_min: -5
  x_max: 5
resolution: 200
parameter:
  t_min: 1
  t_max: 2
  t_step: 0.25
animation:
  delay_ms: 1000
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	want := plot.Domain{XMin: -5, XMax: 5, YMin: -10, YMax: 10}
	assert.Equal(t, want, cfg.Domain)
	assert.Equal(t, 200, cfg.Resolution)
	assert.Equal(t, plot.ParameterRange{Min: 1, Max: 2, Step: 0.25}, cfg.Parameter)
	assert.Equal(t, time.Second, cfg.Animation.Delay())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr)
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", "domain: [1, 2"},
		{"domain", "domain: {x_min: 1, x_max: 0}"},
		{"parameter", "parameter: {t_min: 0, t_max: 1, t_step: 0}"},
		{"resolution", "resolution: 250"},
		{"resolutions", "resolutions: [100, 1000]\nresolution: 100"},
		{"delay", "animation: {delay_ms: 5}"},
		{"color", "render: {color: sometimes}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "implicit.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.src), 0644))
			cfg, err := Load(path)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("IMPLICIT_ADDR", "")
	t.Setenv("IMPLICIT_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "sub", "implicit.yaml")
	cfg := Default()
	cfg.Domain = plot.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 3}
	cfg.Levels.Static = []float64{-1, 0.5, 1}
	cfg.Render.Color = "never"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IMPLICIT_ADDR", ":9999")
	t.Setenv("IMPLICIT_LOG_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
