package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func boolPtr(v bool) *bool { return &v }

func TestSettings_AccessorDefaults(t *testing.T) {
	var s Settings

	assert.True(t, s.IsEnabled())
	assert.Equal(t, "info", s.Level())
	assert.Equal(t, time.Duration(0), s.SettleWindow())
	assert.True(t, s.ShouldRecordHistory())
}

func TestSettings_AbsentOptionalBoolKeepsNilField(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{}`), &s))

	// The accessor reports the declared default while the stored field
	// remains absent.
	assert.Nil(t, s.Enabled)
	assert.True(t, s.IsEnabled())
}

func TestSettings_PresentValueRoundTrips(t *testing.T) {
	original := Settings{
		Enabled:       boolPtr(false),
		LogLevel:      "debug",
		SettleMS:      250,
		RecordHistory: boolPtr(true),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, original.Equal(decoded))
	require.NotNil(t, decoded.Enabled)
	assert.False(t, *decoded.Enabled)
	assert.False(t, decoded.IsEnabled())
}

func TestSettings_YAMLTags(t *testing.T) {
	var s Settings
	require.NoError(t, yaml.Unmarshal([]byte("enabled: false\nlog_level: warn\nsettle_ms: 40\n"), &s))

	assert.False(t, s.IsEnabled())
	assert.Equal(t, "warn", s.Level())
	assert.Equal(t, 40*time.Millisecond, s.SettleWindow())
}

func TestSettings_EqualComparesContentNotIdentity(t *testing.T) {
	a := Settings{Enabled: boolPtr(true), LogLevel: "info"}
	b := Settings{Enabled: boolPtr(true), LogLevel: "info"}

	// Distinct pointer identity, same content.
	assert.True(t, a.Equal(b))

	b.Enabled = boolPtr(false)
	assert.False(t, a.Equal(b))

	c := Settings{LogLevel: "info"}
	assert.False(t, a.Equal(c), "absent and explicit true are different contents")
}

func TestSettings_DefaultPathsPreferJSON(t *testing.T) {
	paths := Settings{}.DefaultPaths()
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "confwatch.json")
	assert.Contains(t, paths[1], "confwatch.yaml")
}
