package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meetvoice/message-history-service/internal/domain"
	"github.com/meetvoice/message-history-service/internal/service"
	"github.com/meetvoice/message-history-service/pkg/log"
	"github.com/meetvoice/message-history-service/pkg/response"
)

// HTTPHandler wires the message, conversation, and presence services onto
// the REST surface.
type HTTPHandler struct {
	messageService      service.MessageService
	conversationService service.ConversationService
	presenceService     service.PresenceService
}

func NewHTTPHandler(
	messageService service.MessageService,
	conversationService service.ConversationService,
	presenceService service.PresenceService,
) *HTTPHandler {
	return &HTTPHandler{
		messageService:      messageService,
		conversationService: conversationService,
		presenceService:     presenceService,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	messages := r.Group("/api/messages")
	{
		messages.GET("/history/:username", h.GetHistory)
		messages.GET("/conversation/:user1/:user2", h.GetConversation)
		messages.DELETE("/conversation/:user1/:user2", h.DeleteConversation)
		messages.GET("/conversations/:username", h.ListConversations)
		messages.POST("/send", h.SendMessage)
		messages.PUT("/mark-read", h.MarkRead)
	}

	users := r.Group("/api/users")
	{
		users.POST("/connect", h.ConnectUser)
		users.POST("/disconnect", h.DisconnectUser)
		users.GET("/online", h.OnlineUsers)
		users.GET("/status/:username", h.UserStatus)
	}

	r.GET("/", h.Index)
	r.GET("/health", h.HealthCheck)
}

// parseLimit reads the limit query parameter. An absent, unparsable, or
// non-positive value falls back to the service default.
func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (h *HTTPHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	messages, err := h.messageService.GetHistory(ctx, username, parseLimit(c))
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("get history failed")
		response.InternalError(c, "failed to get message history")
		return
	}

	response.Success(c, domain.HistoryResponse{
		Username: username,
		Messages: messages,
		Count:    len(messages),
	})
}

func (h *HTTPHandler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	user1 := c.Param("user1")
	user2 := c.Param("user2")

	messages, err := h.messageService.GetConversation(ctx, user1, user2, parseLimit(c))
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("get conversation failed")
		response.InternalError(c, "failed to get conversation")
		return
	}

	response.Success(c, domain.ConversationResponse{
		Participants: []string{user1, user2},
		Messages:     messages,
		Count:        len(messages),
	})
}

func (h *HTTPHandler) DeleteConversation(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.messageService.DeleteConversation(ctx, c.Param("user1"), c.Param("user2"))
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("delete conversation failed")
		response.InternalError(c, "failed to delete conversation")
		return
	}

	response.Success(c, gin.H{"deleted": count})
}

// ListConversations returns the enriched summary list. Enrichment gaps are
// not errors: only a message store failure produces a 500 here.
func (h *HTTPHandler) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	summaries, err := h.conversationService.ListConversations(ctx, username)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("list conversations failed")
		response.InternalError(c, "failed to get conversations")
		return
	}

	response.Success(c, domain.ConversationListResponse{
		Username:      username,
		Conversations: summaries,
		Count:         len(summaries),
	})
}

func (h *HTTPHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "sender, recipient and content are required")
		return
	}

	msg, err := h.messageService.Send(ctx, &req)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("send message failed")
		response.InternalError(c, "failed to send message")
		return
	}

	response.Success(c, msg)
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "sender and recipient are required")
		return
	}

	count, err := h.messageService.MarkRead(ctx, req.Sender, req.Recipient)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("mark read failed")
		response.InternalError(c, "failed to mark messages read")
		return
	}

	response.Success(c, gin.H{"count": count})
}

func (h *HTTPHandler) ConnectUser(c *gin.Context) {
	h.setPresence(c, true)
}

func (h *HTTPHandler) DisconnectUser(c *gin.Context) {
	h.setPresence(c, false)
}

func (h *HTTPHandler) setPresence(c *gin.Context, online bool) {
	ctx := c.Request.Context()

	var req domain.ConnectUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username is required")
		return
	}

	var err error
	if online {
		err = h.presenceService.Connect(ctx, req.Username)
	} else {
		err = h.presenceService.Disconnect(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, service.ErrPresenceUnavailable) {
			response.ServiceUnavailable(c, "user store unavailable")
			return
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("presence update failed")
		response.InternalError(c, "failed to update connection status")
		return
	}

	response.Success(c, domain.UserStatus{Username: req.Username, IsOnline: online})
}

func (h *HTTPHandler) OnlineUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.presenceService.OnlineUsers(ctx)
	if err != nil {
		if errors.Is(err, service.ErrPresenceUnavailable) {
			response.ServiceUnavailable(c, "user store unavailable")
			return
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("online users failed")
		response.InternalError(c, "failed to list online users")
		return
	}

	response.Success(c, gin.H{"users": users, "count": len(users)})
}

func (h *HTTPHandler) UserStatus(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	online, err := h.presenceService.Status(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrPresenceUnavailable) {
			response.ServiceUnavailable(c, "user store unavailable")
			return
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("user status failed")
		response.InternalError(c, "failed to get user status")
		return
	}

	response.Success(c, domain.UserStatus{Username: username, IsOnline: online})
}

func (h *HTTPHandler) Index(c *gin.Context) {
	response.Success(c, gin.H{
		"name":    "Messagerie Rush API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"health": "/health",
			"messages": gin.H{
				"history":       "GET /api/messages/history/:username?limit=100",
				"conversation":  "GET /api/messages/conversation/:user1/:user2?limit=100",
				"conversations": "GET /api/messages/conversations/:username",
				"send":          "POST /api/messages/send",
				"mark_read":     "PUT /api/messages/mark-read",
			},
			"users": gin.H{
				"connect":    "POST /api/users/connect",
				"disconnect": "POST /api/users/disconnect",
				"online":     "GET /api/users/online",
				"status":     "GET /api/users/status/:username",
			},
		},
	})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
