package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1440, cfg.Cycle.Minutes)
	assert.Equal(t, 510, cfg.Sleep.FullMinutes)
	assert.Equal(t, []int{120, 360, 720}, cfg.Cook.Minutes)
	assert.Equal(t, "v2", cfg.CurveVersion)
	assert.Equal(t, []float64{0.45, 0.52, 0.58, 0.66}, cfg.Derived.Curve.Rates)
	assert.Len(t, cfg.Natures, 25)

	bold, ok := cfg.Nature("BOLD")
	require.True(t, ok)
	assert.Equal(t, 1.075, bold.Speed)
	assert.Equal(t, 1.2, bold.Recovery)

	hardy, ok := cfg.Nature("hardy")
	require.True(t, ok)
	assert.Equal(t, 1.0, hardy.Speed)
	assert.Equal(t, 1.0, hardy.Recovery)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "curve_version: v1\ndecay:\n  interval_minutes: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.45, 0.52, 0.62, 0.71}, cfg.Derived.Curve.Rates)
	assert.Equal(t, 5, cfg.Decay.IntervalMinutes)
	assert.Equal(t, 1.0, cfg.Decay.Amount, "fields missing from the overlay keep their defaults")
}

func TestLoadUnknownCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("curve_version: v9\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "v9")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cook, again.Cook)
	assert.Equal(t, cfg.Derived.Curve, again.Derived.Curve)
}

func TestInitAndCfg(t *testing.T) {
	MustInit("")
	assert.Equal(t, 1440, Cfg().Cycle.Minutes)
}
