package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PASS_THRESHOLD", "")
	t.Setenv("COURSE_CACHE_TTL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.PassThreshold)
	assert.Equal(t, 10*time.Minute, cfg.CourseCacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PASS_THRESHOLD", "80")
	t.Setenv("JWT_TTL_HOURS", "1")
	t.Setenv("COURSE_CACHE_TTL", "30s")
	t.Setenv("LLM_BASE_URL", "http://llm.local/v1/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 80, cfg.PassThreshold)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.CourseCacheTTL)
	assert.Equal(t, "http://llm.local/v1", cfg.LLMBaseURL)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "seventy")
	assert.Equal(t, 5, getEnvInt("SOME_INT", 5))
}
