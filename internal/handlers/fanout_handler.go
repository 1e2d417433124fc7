package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/tahmidr/glowfeed/backend/internal/chat"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
)

// FanoutHandler exposes the notification fan-out pipeline over HTTP: a direct
// dispatch endpoint for authenticated clients and a webhook for the external
// chat provider.
type FanoutHandler struct {
	orchestrator   *fanout.Orchestrator
	chatClient     chat.Client
	userRepository repositories.UserRepository
	webhookSecret  string
}

// NewFanoutHandler creates a new FanoutHandler
func NewFanoutHandler(orchestrator *fanout.Orchestrator, chatClient chat.Client, userRepo repositories.UserRepository, webhookSecret string) *FanoutHandler {
	return &FanoutHandler{
		orchestrator:   orchestrator,
		chatClient:     chatClient,
		userRepository: userRepo,
		webhookSecret:  webhookSecret,
	}
}

// RegisterFanoutRoutes registers the authenticated dispatch endpoint
func (h *FanoutHandler) RegisterFanoutRoutes(g *echo.Group) {
	g.POST("/notifications/fanout", h.Dispatch)
}

// RegisterWebhookRoutes registers the chat provider webhook (no JWT; the
// shared secret header is the authentication)
func (h *FanoutHandler) RegisterWebhookRoutes(g *echo.Group) {
	g.POST("/webhooks/chat", h.ChatWebhook)
}

// DispatchRequest is the body of the direct fan-out endpoint
type DispatchRequest struct {
	ChannelID          string   `json:"channelId" validate:"required"`
	Text               string   `json:"text" validate:"required"`
	MentionedUsernames []string `json:"mentionedUsernames,omitempty"`
	DMRecipientID      uint     `json:"dmRecipientId,omitempty"`
}

// Dispatch sends a message through the chat provider and fans out the
// resulting notifications. The caller is the message author.
func (h *FanoutHandler) Dispatch(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req DispatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	channelID := req.ChannelID

	if req.DMRecipientID != 0 && h.chatClient != nil {
		id, err := h.chatClient.CreateDirectChannel(ctx, userID, req.DMRecipientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "Chat provider unavailable")
		}
		channelID = id
		if err := h.chatClient.SendMessage(ctx, channelID, userID, req.Text); err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "Failed to send message")
		}
	}

	actor, _ := h.userRepository.GetUserByID(userID)
	ev := fanout.Event{
		Type:          fanout.EventMessage,
		ActorID:       userID,
		Text:          req.Text,
		Usernames:     req.MentionedUsernames,
		TargetOwnerID: req.DMRecipientID,
		TargetID:      channelID,
		TargetType:    "channel",
	}
	if actor != nil {
		ev.Message = actor.Username + " sent you a message"
	}

	outcome, err := h.orchestrator.Dispatch(ctx, ev)
	if err != nil && outcome.Status == fanout.StatusFailed {
		return c.JSON(http.StatusBadGateway, echo.Map{
			"ok":       false,
			"status":   outcome.Status,
			"notified": outcome.Notified,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":       true,
		"status":   outcome.Status,
		"notified": outcome.Notified,
	})
}

// chatWebhookPayload is the closed set of fields the provider posts
type chatWebhookPayload struct {
	Type               string   `json:"type"`
	ChannelID          string   `json:"channelId"`
	SenderID           uint     `json:"senderId"`
	Text               string   `json:"text"`
	MentionedUsernames []string `json:"mentionedUsernames"`
	MemberIDs          []uint   `json:"memberIds"`
}

// ChatWebhook ingests provider events. Only "message.new" is understood;
// anything else is rejected so silent drops never hide a contract change.
func (h *FanoutHandler) ChatWebhook(c echo.Context) error {
	if h.webhookSecret == "" || c.Request().Header.Get("X-Webhook-Secret") != h.webhookSecret {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook secret")
	}

	var payload chatWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook payload")
	}

	if payload.Type != "message.new" {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown webhook event type")
	}
	if payload.ChannelID == "" || payload.SenderID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing channel or sender")
	}

	ev := fanout.Event{
		Type:       fanout.EventMessage,
		ActorID:    payload.SenderID,
		Usernames:  payload.MentionedUsernames,
		TargetID:   payload.ChannelID,
		TargetType: "channel",
		Message:    payload.Text,
	}

	// In a two-member channel the other participant is the implicit recipient.
	if len(payload.MemberIDs) == 2 {
		for _, id := range payload.MemberIDs {
			if id != payload.SenderID {
				ev.TargetOwnerID = id
			}
		}
	}

	outcome, err := h.orchestrator.Dispatch(c.Request().Context(), ev)
	if err != nil && outcome.Status == fanout.StatusFailed {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":       true,
		"status":   outcome.Status,
		"notified": outcome.Notified,
	})
}
