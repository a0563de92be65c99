package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savgol-image-filter/internal/savgol"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "savgol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, "input: page.png\noutput: out.png\norder: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "page.png", cfg.Input)
	assert.Equal(t, 1, cfg.Order)
	assert.Equal(t, WindowSize{Width: 5, Height: 5}, cfg.Window)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.Metrics)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWindow(t *testing.T) {
	path := writeFile(t, `
input: a.png
output: b.png
window:
  width: 9
  height: 7
order: 3
workers: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, savgol.Window{Width: 9, Height: 7, Order: 3}, cfg.SavGolWindow())
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "window: [1, 2\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.Validate(), ErrMissingInput)

	cfg.Input = "in.png"
	assert.Error(t, cfg.Validate(), "output required")

	cfg.Preview = true
	assert.NoError(t, cfg.Validate())

	cfg.Window = WindowSize{Width: 3, Height: 3}
	cfg.Order = 3
	assert.ErrorIs(t, cfg.Validate(), savgol.ErrOrderTooHigh)

	cfg.Order = 1
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg.Workers = 2
	cfg.Baseline = "median_blur"
	assert.NoError(t, cfg.Validate())
	cfg.Baseline = "box"
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input = "in.png"
	cfg.Output = "out.png"
	cfg.Window = WindowSize{Width: 7, Height: 3}

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
