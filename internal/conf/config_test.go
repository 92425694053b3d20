package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func validSettings() *Settings {
	return &Settings{
		Main: MainSettings{
			Name: "libris",
			Log:  LogConfig{Enabled: true, Path: "logs/libris.log", Rotation: RotationDaily},
		},
		Server: ServerSettings{
			URL:     "http://localhost:8000/api",
			Timeout: 30 * time.Second,
			PerPage: 12,
		},
		Cache:   CacheSettings{TTL: time.Minute},
		Storage: StorageSettings{Bucket: "book-covers"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))

	s := validSettings()
	s.Server.URL = ""
	assert.Error(t, ValidateSettings(s), "missing server URL must fail")

	s = validSettings()
	s.Server.PerPage = 0
	assert.Error(t, ValidateSettings(s), "non-positive page size must fail")

	s = validSettings()
	s.Server.Timeout = 0
	assert.Error(t, ValidateSettings(s), "non-positive timeout must fail")

	s = validSettings()
	s.Cache.TTL = -time.Second
	assert.Error(t, ValidateSettings(s), "negative cache TTL must fail")

	s = validSettings()
	s.Main.Log.Rotation = "hourly"
	assert.Error(t, ValidateSettings(s), "unknown rotation type must fail")

	s = validSettings()
	s.Main.Log.Rotation = ""
	assert.NoError(t, ValidateSettings(s), "empty rotation falls back to defaults")
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := validSettings()
	s.Server.Token = "persisted-token"

	require.NoError(t, SaveSettings(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Settings
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, "persisted-token", loaded.Server.Token)
	assert.Equal(t, 12, loaded.Server.PerPage)
	assert.Equal(t, RotationDaily, loaded.Main.Log.Rotation)
}

func TestEmbeddedDefaultConfigParses(t *testing.T) {
	t.Parallel()

	var defaults map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(getDefaultConfig()), &defaults))
	assert.Contains(t, defaults, "server")
	assert.Contains(t, defaults, "cache")
	assert.Contains(t, defaults, "storage")
}

func TestSetAndGetSettings(t *testing.T) {
	s := validSettings()
	SetSettings(s)
	assert.Same(t, s, GetSettings())
}
