package handlers

import (
	"errors"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/middleware"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ChatHandlerInterface defines the contract for the chat proxy and transcript handlers
type ChatHandlerInterface interface {
	Chat(c fiber.Ctx) error
	LogTerminalChat(c fiber.Ctx) error
	AdminListTerminalChats(c fiber.Ctx) error
	AdminClearTerminalChats(c fiber.Ctx) error
}

// ChatHandler proxies the site assistant and keeps its transcripts
type ChatHandler struct {
	baseHandler
	chatFlow     businessflow.ChatFlow
	terminalFlow businessflow.TerminalChatFlow
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatFlow businessflow.ChatFlow, terminalFlow businessflow.TerminalChatFlow) *ChatHandler {
	return &ChatHandler{baseHandler: newBaseHandler(), chatFlow: chatFlow, terminalFlow: terminalFlow}
}

// Chat
// @Summary Ask the site assistant
// @Description Forwards the message and recent history to the configured model. With a sessionId the exchange is appended to the transcript.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.ChatResponse}
// @Failure 400 {object} dto.APIResponse "Message is required"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Failure 502 {object} dto.APIResponse "Upstream failure"
// @Failure 503 {object} dto.APIResponse "Chat is currently unavailable"
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var req dto.ChatRequest
	if err := h.bindJSON(c, &req); err != nil {
		middleware.RecordChatRequest(middleware.ChatOutcomeInvalid)
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/chat")
	defer cancel()

	reply, err := h.chatFlow.Reply(ctx, &req, clientMetadata(c))
	if err != nil {
		middleware.RecordChatRequest(chatOutcome(err))
		return err
	}
	middleware.RecordChatRequest(middleware.ChatOutcomeOK)

	return h.SuccessResponse(c, fiber.StatusOK, "", reply)
}

func chatOutcome(err error) string {
	switch {
	case businessflow.IsChatUnavailable(err):
		return middleware.ChatOutcomeUnavailable
	case errors.Is(err, businessflow.ErrChatUpstreamFailed):
		return middleware.ChatOutcomeUpstream
	default:
		return middleware.ChatOutcomeInvalid
	}
}

// LogTerminalChat
// @Summary Append a transcript turn
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.TerminalChatRequest true "Turn"
// @Success 200 {object} dto.APIResponse{data=dto.TerminalChatDTO}
// @Failure 400 {object} dto.APIResponse "sessionId, role and content are required"
// @Router /api/terminal-chat [post]
func (h *ChatHandler) LogTerminalChat(c fiber.Ctx) error {
	var req dto.TerminalChatRequest
	if err := h.bindJSON(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/terminal-chat")
	defer cancel()

	chat, err := h.terminalFlow.Log(ctx, &req, clientMetadata(c))
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", chat)
}

// AdminListTerminalChats
// @Summary List transcript turns
// @Description Newest first. A date-only endDate includes that whole day.
// @Tags Admin Chat
// @Produce json
// @Param sessionId query string false "Session"
// @Param visitorId query string false "Visitor"
// @Param startDate query string false "YYYY-MM-DD or RFC3339"
// @Param endDate query string false "YYYY-MM-DD or RFC3339"
// @Param limit query integer false "Max rows (default 100, max 1000)"
// @Success 200 {object} dto.APIResponse{data=dto.TerminalChatListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid date"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/terminal-chats [get]
func (h *ChatHandler) AdminListTerminalChats(c fiber.Ctx) error {
	var q dto.TerminalChatListQuery
	if err := h.bindQuery(c, &q); err != nil {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/admin/terminal-chats")
	defer cancel()

	result, err := h.terminalFlow.AdminList(ctx, &q)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "", result)
}

// AdminClearTerminalChats
// @Summary Delete every transcript turn
// @Tags Admin Chat
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/admin/terminal-chats [delete]
func (h *ChatHandler) AdminClearTerminalChats(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/admin/terminal-chats")
	defer cancel()

	n, err := h.terminalFlow.Clear(ctx)
	if err != nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Terminal chats cleared", fiber.Map{"deleted": n})
}
