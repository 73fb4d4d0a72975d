package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/api/http/handlers"
	"github.com/spec-kit/voicedesk/internal/observability"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	return app
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorEnvelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestErrorMiddlewareMapsDomainErrors(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(*fiber.Ctx) error {
		return apperrors.NewQuotaExceeded(100, 100)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	envelope := decodeError(t, resp)
	require.Equal(t, apperrors.CodeQuotaExceeded, envelope.Error.Code)
	require.EqualValues(t, 100, envelope.Error.Details["max_tickets"])
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app := newTestApp()
	app.Get("/panic", func(*fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, apperrors.CodeInternal, decodeError(t, resp).Error.Code)
}

func TestWebhookAuthorize(t *testing.T) {
	app := newTestApp()
	webhook := handlers.NewWebhookHandler("s3cret", nil, nil)
	app.Post("/webhooks/voicemail", webhook.Authorize, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic s3cret", status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer s3cret", status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/voicemail", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestWebhookAuthorizeRejectsWhenSecretUnset(t *testing.T) {
	app := newTestApp()
	webhook := handlers.NewWebhookHandler("", nil, nil)
	app.Post("/webhooks/voicemail", webhook.Authorize, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/voicemail", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
