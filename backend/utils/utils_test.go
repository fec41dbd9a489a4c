package utils

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"academy/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateJWTToken("user-1", cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return Unauthorized(c, err.Error())
		}
		return c.SendString(id)
	})

	for _, header := range []string{token, "Bearer " + token} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestParseUserIDRejectsForeignSecret(t *testing.T) {
	token, err := GenerateJWTToken("user-1", &config.Config{JWTSecret: "other", JWTTTL: time.Hour})
	require.NoError(t, err)

	_, err = ParseUserID(token, testConfig())
	assert.Error(t, err)
}

func TestParseUserIDRejectsExpired(t *testing.T) {
	token, err := GenerateJWTToken("user-1", &config.Config{JWTSecret: "test-secret", JWTTTL: -time.Minute})
	require.NoError(t, err)

	_, err = ParseUserID(token, testConfig())
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	assert.Nil(t, ValidateStruct(input{Email: "a@b.io", Password: "longenough"}))

	errs := ValidateStruct(input{Email: "nope", Password: "short"})
	assert.Equal(t, "must be a valid email", errs["email"])
	assert.Equal(t, "must be at least 8", errs["password"])
}

func TestComponentLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := InitLogger(LoggerConfig{Format: "text", Output: &buf})
	ComponentLogger(base, "PROGRESS-AUDIT").Print("scan finished")
	assert.Contains(t, buf.String(), "[Academy] [PROGRESS-AUDIT] ")
	assert.Contains(t, buf.String(), "scan finished")
}

func TestJSONLoggerWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	base := InitLogger(LoggerConfig{Format: "json", Output: &buf})
	base.Print("server starting")
	ComponentLogger(base, "PROGRESS-AUDIT").Printf("scanned %d records", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "Academy", first["service"])
	assert.Equal(t, "server starting", first["message"])
	assert.NotContains(t, first, "component")
	assert.NotEmpty(t, first["time"])

	assert.Equal(t, "PROGRESS-AUDIT", second["component"])
	assert.Equal(t, "scanned 3 records", second["message"])
}

func TestInitDBSqliteMigrates(t *testing.T) {
	db, err := InitDB(&config.Config{DBDriver: "sqlite", DBPath: "file:utils_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("user_progresses"))
	assert.True(t, db.Migrator().HasIndex("user_progresses", "idx_learner_course"))

	_, err = InitDB(&config.Config{DBDriver: "mongo"})
	assert.Error(t, err)
}
