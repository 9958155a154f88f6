package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, ":5175", c.Addr())
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, c.ClientOrigins)
	assert.Equal(t, DevSessionSecret, c.SessionSecret)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, 2*time.Hour, c.SessionIdle)
	assert.Empty(t, c.LessonsFile)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CLIENT_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("LESSONS_FILE", "/tmp/lessons.yaml")
	t.Setenv("LOG_FORMAT", "console")

	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.ClientOrigins)
	assert.Equal(t, 90*time.Minute, c.SessionTTL)
	assert.Equal(t, "/tmp/lessons.yaml", c.LessonsFile)
	assert.Equal(t, "console", c.LogFormat)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	c, err := Parse()
	require.NoError(t, err)

	c.LogFormat = "xml"
	c.SessionIdle = 0
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "SESSION_IDLE")
}
