package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Paper.Width)
	assert.Equal(t, 1000.0, cfg.CreaseSpan)
	assert.Equal(t, 5*time.Second, cfg.EvalTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
paper:
  width: 20
  height: 10
eval_timeout: 250ms
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, Paper{Width: 20, Height: 10}, cfg.Paper)
	assert.Equal(t, 250*time.Millisecond, cfg.EvalTimeout)
	assert.Equal(t, 1000.0, cfg.CreaseSpan, "absent keys keep defaults")
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", "paper: [1, 2"},
		{"negative width", "paper: {width: -1, height: 1}"},
		{"zero span", "crease_span: 0"},
		{"unknown level", "log_level: loud"},
		{"zero timeout", "eval_timeout: 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "origami.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crease_span: 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, cfg.CreaseSpan)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
