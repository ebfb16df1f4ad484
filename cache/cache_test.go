package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var host = procon.NewAddr("dc:a6:32:00:00:01")

func TestConsoleCache_Store(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "consoles.json"))
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.Store(host, procon.Console{Addr: "98-B6-E9-12-34-56", LastSeen: seen}, false))

	loaded, err := c.Load(host)
	require.NoError(t, err)
	assert.Equal(t, "98:b6:e9:12:34:56", loaded.Addr)
	assert.True(t, seen.Equal(loaded.LastSeen))
}

func TestConsoleCache_Replace(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "consoles.json"))

	require.NoError(t, c.Store(host, procon.Console{Addr: "98:b6:e9:12:34:56"}, false))
	assert.Error(t, c.Store(host, procon.Console{Addr: "98:b6:e9:00:00:01"}, false))
	require.NoError(t, c.Store(host, procon.Console{Addr: "98:b6:e9:00:00:01"}, true))

	loaded, err := c.Load(host)
	require.NoError(t, err)
	assert.Equal(t, "98:b6:e9:00:00:01", loaded.Addr)
}

func TestConsoleCache_Missing(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "consoles.json"))

	_, err := c.Load(host)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	assert.NoError(t, c.Clear())

	require.NoError(t, c.Store(host, procon.Console{Addr: "98:b6:e9:12:34:56"}, false))
	require.NoError(t, c.Clear())
	_, err = c.Load(host)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestConsoleCache_ManyHosts(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "consoles.json"))
	hosts := []procon.Addr{
		host,
		procon.NewAddr("dc:a6:32:00:00:02"),
		procon.NewAddr("dc:a6:32:00:00:03"),
	}
	consoles := []string{"98:b6:e9:00:00:01", "98:b6:e9:00:00:02", "98:b6:e9:00:00:03"}

	for i, h := range hosts {
		require.NoError(t, c.Store(h, procon.Console{Addr: consoles[i]}, false))
	}
	for i, h := range hosts {
		loaded, err := c.Load(h)
		require.NoError(t, err)
		assert.Equal(t, consoles[i], loaded.Addr)
	}
}
