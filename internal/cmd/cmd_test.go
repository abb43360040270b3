package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/padlight/internal/layout"
	"github.com/Alia5/padlight/render"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigInitRun(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "run.json")
	c := &ConfigInit{Command: "run", Format: "json", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "bma", got["layout"])
	assert.Equal(t, "8ms", got["reportInterval"])
	viiper, ok := got["viiper"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "localhost:3242", viiper["addr"])
	gpio, ok := got["gpio"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, gpio["lines"])

	assert.ErrorContains(t, c.Run(), "destination exists")
	c.Force = true
	assert.NoError(t, c.Run())
}

func TestConfigInitYAML(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "run.yaml")
	c := &ConfigInit{Command: "run", Format: "yml", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "sim", got["panel"])
	assert.Equal(t, "log", got["host"])
}

func TestConfigInitErrors(t *testing.T) {
	assert.ErrorContains(t, (&ConfigInit{Command: "run", Format: "ini"}).Run(), "unsupported format")
	assert.ErrorContains(t, (&ConfigInit{Command: "serve", Format: "json"}).Run(), "unknown command")
}

func TestLayoutInit(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "pad."+format)
			require.NoError(t, (&LayoutInit{Name: "arrows", Format: format, Output: dest}).Run())

			f, err := layout.Load(dest)
			require.NoError(t, err)
			assert.Equal(t, "arrows", f.Name)
			_, err = f.Config()
			assert.NoError(t, err)
		})
	}
	assert.ErrorContains(t, (&LayoutInit{Name: "qwerty", Format: "json"}).Run(), "unknown built-in layout")
}

func TestLayoutShow(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&LayoutShow{Layout: "bma", out: &out}).Run())

	f, err := layout.Builtin("bma")
	require.NoError(t, err)
	cfg, err := f.Config()
	require.NoError(t, err)
	frame := render.New(cfg.RenderConfig()).Frame(cfg.KeyCount, render.State{Indicator: cfg.CycleColors[0]})

	s := out.String()
	assert.Contains(t, s, "normal")
	assert.Contains(t, s, "highlight")
	assert.Contains(t, s, "hl")
	assert.Contains(t, s, "sup/ind")
	require.True(t, frame[15].On)
	assert.Contains(t, s, frame[15].Color.Hex())

	assert.Error(t, (&LayoutShow{Layout: "missing.yaml", out: &out}).Run())
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	r := &Run{Layout: "qwerty", Host: "log"}
	assert.ErrorContains(t, r.Start(ctx, discard(), nil), "unknown built-in layout")

	r = &Run{Layout: "bma", Host: "carrier-pigeon"}
	assert.ErrorContains(t, r.Start(ctx, discard(), nil), "unknown host")

	r = &Run{Layout: "bma", Host: "log", Panel: "gpio", Gpio: GpioConfig{Lines: []int{1, 2, 3}}}
	assert.ErrorContains(t, r.Start(ctx, discard(), nil), "3 lines configured for 16 keys")

	r = &Run{Layout: "bma", Host: "log", Panel: "abacus"}
	assert.ErrorContains(t, r.Start(ctx, discard(), nil), "unknown panel")
}

func TestRunLayoutOverrides(t *testing.T) {
	r := &Run{Layout: "arrows", PollInterval: 25_000_000}
	cfg, name, err := r.loadLayout()
	require.NoError(t, err)
	assert.Equal(t, "arrows", name)
	assert.Equal(t, r.PollInterval, cfg.PollInterval)

	w, err := (&Run{Host: "log"}).openWriter(context.Background(), discard())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
