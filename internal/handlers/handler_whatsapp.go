package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
	"github.com/contaflow/backoffice/internal/platform/config"
)

// whatsappHandler bridges the provider webhook to the conversation
// state machine and exposes the operator-facing send and diagnostics
// endpoints.
type whatsappHandler struct {
	cfg             *config.Config
	conversationSvc ports.ConversationSvcFacade
}

func newWhatsAppHandler(cfg *config.Config, cs ports.ConversationSvcFacade) *whatsappHandler {
	return &whatsappHandler{cfg: cfg, conversationSvc: cs}
}

// registerWhatsAppWebhookRoutes registers the provider-facing webhook
// pair. These stay outside the authenticated group: the provider
// authenticates via the verify-token handshake, not via JWT.
func registerWhatsAppWebhookRoutes(r *gin.Engine, cfg *config.Config, conversationSvc ports.ConversationSvcFacade) {
	h := newWhatsAppHandler(cfg, conversationSvc)
	r.GET("/api/v1/whatsapp/webhook", h.verifyWebhook)
	r.POST("/api/v1/whatsapp/webhook", h.receiveWebhook)
}

// registerWhatsAppRoutes registers the authenticated operator surface.
func registerWhatsAppRoutes(rg *gin.RouterGroup, cfg *config.Config, conversationSvc ports.ConversationSvcFacade) {
	h := newWhatsAppHandler(cfg, conversationSvc)

	wa := rg.Group("/whatsapp", middleware.RequireAdmin())
	{
		wa.POST("/send", h.send)
		wa.GET("/conversations", h.listConversations)
		wa.GET("/health", h.health)
		wa.GET("/debug", h.debug)
		wa.POST("/test-send", h.testSend)
		wa.GET("/delivery-check", h.deliveryCheck)
	}
}

// verifyWebhook godoc
// @Summary Webhook subscription handshake
// @Description Echoes hub.challenge when hub.verify_token matches the configured secret
// @Tags whatsapp
// @Produce plain
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Shared secret"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string "Challenge"
// @Failure 403 {object} map[string]string "Token mismatch"
// @Router /whatsapp/webhook [get]
func (h *whatsappHandler) verifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.WhatsAppVerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
}

// receiveWebhook godoc
// @Summary Receive provider events
// @Description Dispatches inbound messages to the conversation state machine and delivery statuses to the message log. Always answers 200 so the provider does not retry.
// @Tags whatsapp
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /whatsapp/webhook [post]
func (h *whatsappHandler) receiveWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var envelope dto.WebhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.Warn("unparseable webhook payload", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" {
					logger.Debug("skipping non-text message", slog.String("type", msg.Type))
					continue
				}
				if err := h.conversationSvc.HandleInboundMessage(c.Request.Context(), msg.From, msg.ID, msg.Text.Body); err != nil {
					logger.Error("inbound message handling failed",
						slog.String("provider_message_id", msg.ID),
						slog.String("error", err.Error()))
				}
			}
			for _, st := range change.Value.Statuses {
				at := parseWebhookTimestamp(st.Timestamp)
				var errCode *int
				var errDetail string
				if len(st.Errors) > 0 {
					errCode = &st.Errors[0].Code
					errDetail = st.Errors[0].Title
					if st.Errors[0].ErrorData.Details != "" {
						errDetail = st.Errors[0].ErrorData.Details
					}
				}
				if err := h.conversationSvc.HandleStatusUpdate(c.Request.Context(), st.ID, st.Status, at, errCode, errDetail); err != nil {
					logger.Error("status update handling failed",
						slog.String("provider_message_id", st.ID),
						slog.String("error", err.Error()))
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// parseWebhookTimestamp converts the provider's unix-seconds string,
// falling back to now on garbage.
func parseWebhookTimestamp(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}

// send godoc
// @Summary Send a WhatsApp message
// @Tags whatsapp
// @Accept json
// @Produce json
// @Param body body dto.SendWhatsAppRequest true "Recipient and message"
// @Success 200 {object} dto.SendWhatsAppResponse
// @Failure 400 {object} map[string]string "Invalid phone or body"
// @Failure 500 {object} map[string]string "Integration not configured"
// @Security BearerAuth
// @Router /whatsapp/send [post]
func (h *whatsappHandler) send(c *gin.Context) {
	var req dto.SendWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if req.AdminID == nil {
		if actorID, ok := middleware.GetUserIDFromContext(c); ok {
			req.AdminID = &actorID
		}
	}
	resp, err := h.conversationSvc.SendMessage(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listConversations godoc
// @Summary List WhatsApp conversations
// @Tags whatsapp
// @Produce json
// @Param status query string false "Status filter (WAITING_DEPARTMENT, CONVERSING, ENDED)"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.ConversationResponse
// @Security BearerAuth
// @Router /whatsapp/conversations [get]
func (h *whatsappHandler) listConversations(c *gin.Context) {
	var status *domain.ConversationStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.ConversationStatus(raw)
		switch s {
		case domain.ConversationWaitingDepartment, domain.ConversationConversing, domain.ConversationEnded:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + raw})
			return
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	conversations, err := h.conversationSvc.ListConversations(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		out = append(out, dto.ToConversationResponse(&conversations[i]))
	}
	c.JSON(http.StatusOK, out)
}

// health godoc
// @Summary WhatsApp integration health
// @Description Probes the access token against the provider and translates known error codes into actionable hints
// @Tags whatsapp
// @Produce json
// @Success 200 {object} dto.HealthReport
// @Security BearerAuth
// @Router /whatsapp/health [get]
func (h *whatsappHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.conversationSvc.HealthReport(c.Request.Context()))
}

// debug godoc
// @Summary WhatsApp traffic summary
// @Tags whatsapp
// @Produce json
// @Param window query int false "Window in hours, default 24"
// @Success 200 {object} dto.TrafficReport
// @Security BearerAuth
// @Router /whatsapp/debug [get]
func (h *whatsappHandler) debug(c *gin.Context) {
	window := windowFromQuery(c, 24)
	report, err := h.conversationSvc.TrafficReport(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// testSend godoc
// @Summary Send a diagnostic test message
// @Description Sends a canned message to the given number so delivery can be verified end to end
// @Tags whatsapp
// @Accept json
// @Produce json
// @Param body body dto.TestSendRequest true "Recipient"
// @Success 200 {object} dto.SendWhatsAppResponse
// @Security BearerAuth
// @Router /whatsapp/test-send [post]
func (h *whatsappHandler) testSend(c *gin.Context) {
	var req dto.TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	sendReq := dto.SendWhatsAppRequest{
		To:      req.To,
		Message: "Mensagem de teste do atendimento. Se recebeu, a integracao esta funcionando.",
	}
	if actorID, ok := middleware.GetUserIDFromContext(c); ok {
		sendReq.AdminID = &actorID
	}
	resp, err := h.conversationSvc.SendMessage(c.Request.Context(), sendReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deliveryCheck godoc
// @Summary List outbound messages without delivery confirmation
// @Tags whatsapp
// @Produce json
// @Param window query int false "Window in hours, default 24"
// @Success 200 {object} dto.DeliveryCheckReport
// @Security BearerAuth
// @Router /whatsapp/delivery-check [get]
func (h *whatsappHandler) deliveryCheck(c *gin.Context) {
	window := windowFromQuery(c, 24)
	report, err := h.conversationSvc.DeliveryCheck(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func windowFromQuery(c *gin.Context, defaultHours int) time.Duration {
	hours, err := strconv.Atoi(c.DefaultQuery("window", strconv.Itoa(defaultHours)))
	if err != nil || hours <= 0 || hours > 24*30 {
		hours = defaultHours
	}
	return time.Duration(hours) * time.Hour
}
