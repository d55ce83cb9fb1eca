package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(discardLogger()),
	})
	app.Post("/cameras/:id/frames", rl.Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	return app
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 5, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)
		path := "/cameras/" + uuid.NewString() + "/frames"

		for i := 0; i < 5; i++ {
			resp, err := app.Test(httptest.NewRequest("POST", path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 2, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)
		path := "/cameras/" + uuid.NewString() + "/frames"

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest("POST", path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		}

		resp, err := app.Test(httptest.NewRequest("POST", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	})

	t.Run("cameras have separate limits", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 1, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)
		camA := "/cameras/" + uuid.NewString() + "/frames"
		camB := "/cameras/" + uuid.NewString() + "/frames"

		resp, _ := app.Test(httptest.NewRequest("POST", camA, nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest("POST", camA, nil))
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest("POST", camB, nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 1, Window: time.Minute})
		defer rl.Stop()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }
		app := newLimitedApp(rl)
		path := "/cameras/" + uuid.NewString() + "/frames"

		resp, _ := app.Test(httptest.NewRequest("POST", path, nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest("POST", path, nil))
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

		now = now.Add(61 * time.Second)
		resp, _ = app.Test(httptest.NewRequest("POST", path, nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	})

	t.Run("rate limit headers are set", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, err := app.Test(httptest.NewRequest("POST", "/cameras/"+uuid.NewString()+"/frames", nil))
		require.NoError(t, err)

		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          1,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)
		path := "/cameras/" + uuid.NewString() + "/frames"

		for i := 0; i < 5; i++ {
			resp, _ := app.Test(httptest.NewRequest("POST", path, nil))
			assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		}
	})
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	assert.Equal(t, 1200, config.Max)
	assert.Equal(t, time.Minute, config.Window)
	assert.NotNil(t, config.KeyGenerator)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Second})

	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}
