package session

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerFrom(t *testing.T) {
	id := uuid.New()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"sub":  id.String(),
			"name": "Ada",
			"role": "mentor",
		}})
		v, err := ViewerFrom(c)
		require.NoError(t, err)
		assert.Equal(t, id, v.UserID)
		assert.Equal(t, "Ada", v.DisplayName)
		assert.Equal(t, "mentor", v.Role)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := ViewerFrom(c)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/", "/anon"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestLocation(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Location(c, time.UTC).String())
	})

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/", "Asia/Tokyo", "Asia/Tokyo"},
		{"query", "/?tz=Europe/Berlin", "", "Europe/Berlin"},
		{"unknown falls back", "/?tz=Nowhere/Special", "", "UTC"},
		{"none", "/", "", "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Timezone", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
