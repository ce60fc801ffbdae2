package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ukonnect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "api:\n  base_url: http://localhost:8080/\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.Gallery.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Activity.RefreshInterval)
	assert.Equal(t, "ws://localhost:8080/ws/push", cfg.PushURL())
}

func TestLoad_GalleryAttemptsBounded(t *testing.T) {
	for _, n := range []string{"0", "4", "100"} {
		_, err := Load(writeConfig(t, "gallery:\n  max_attempts: "+n+"\n"))
		assert.ErrorContains(t, err, "gallery.max_attempts", "max_attempts=%s", n)
	}

	cfg, err := Load(writeConfig(t, "gallery:\n  max_attempts: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Gallery.MaxAttempts)
}
