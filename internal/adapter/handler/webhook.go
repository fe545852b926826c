package handler

import (
	"crypto/subtle"
	"io"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/hoangnam-dev/persona-interview/errors"
	sessionUsecase "github.com/hoangnam-dev/persona-interview/internal/usecase/session"
)

const webhookSecretHeader = "X-Webhook-Secret"

// Webhook handles out-of-band event deliveries from the realtime provider.
// Deliveries are authenticated by a shared secret compared in constant
// time; anything unauthenticated or malformed is rejected before touching
// session state.
type Webhook struct {
	manager *sessionUsecase.Manager
	secret  string
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(manager *sessionUsecase.Manager, secret string, logger *zap.Logger) *Webhook {
	return &Webhook{manager: manager, secret: secret, logger: logger}
}

// HandleRealtimeWebhook handles POST /webhooks/realtime/:session_id
func (h *Webhook) HandleRealtimeWebhook(c echo.Context) error {
	if !h.authenticated(c) {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("session_id must be a valid UUID"))
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if err := h.manager.Webhook(c.Request().Context(), sessionID, payload); err != nil {
		if h.logger != nil {
			h.logger.Error("webhook processing failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(err))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}

func (h *Webhook) authenticated(c echo.Context) bool {
	if h.secret == "" {
		return false
	}
	provided := c.Request().Header.Get(webhookSecretHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}
