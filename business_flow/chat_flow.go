package businessflow

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/services"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"go.uber.org/zap"
)

// DefaultChatSystemPrompt frames the site assistant
const DefaultChatSystemPrompt = `You are the AetherInc site assistant. AetherInc builds private, locally hosted AI systems for businesses.
Answer questions about AetherInc's products, the waitlist and general AI topics briefly and plainly.
If you do not know something about AetherInc, say so and suggest the contact form.`

const maxChatHistory = 20

// ChatFlow proxies the site chat widget to the configured model provider
type ChatFlow interface {
	Reply(ctx context.Context, req *dto.ChatRequest, metadata *ClientMetadata) (*dto.ChatResponse, error)
}

// ChatFlowImpl implements ChatFlow
type ChatFlowImpl struct {
	provider     services.ChatProvider
	chatRepo     repository.TerminalChatRepository
	systemPrompt string
}

func NewChatFlow(provider services.ChatProvider, chatRepo repository.TerminalChatRepository, systemPrompt string) ChatFlow {
	if provider == nil {
		provider = services.NewDisabledChatProvider()
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultChatSystemPrompt
	}
	return &ChatFlowImpl{provider: provider, chatRepo: chatRepo, systemPrompt: systemPrompt}
}

// ChatUnavailableError is returned when no provider is configured
func ChatUnavailableError(err error) *BusinessError {
	be := NewExternalServiceError("CHAT_UNAVAILABLE", "Chat is currently unavailable", errors.Join(ErrChatUnavailable, err))
	be.Status = http.StatusServiceUnavailable
	return be
}

func (f *ChatFlowImpl) Reply(ctx context.Context, req *dto.ChatRequest, metadata *ClientMetadata) (*dto.ChatResponse, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, NewValidationError("CHAT_MESSAGE_REQUIRED", "Message is required", ErrChatMessageRequired)
	}
	message := strings.TrimSpace(req.Message)

	history := req.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	turns := make([]services.ChatMessage, 0, len(history))
	for _, h := range history {
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		turns = append(turns, services.ChatMessage{Role: h.Role, Content: h.Content})
	}

	completion, err := f.provider.Generate(ctx, f.systemPrompt, turns, message)
	if err != nil {
		if errors.Is(err, services.ErrChatProviderDisabled) {
			return nil, ChatUnavailableError(err)
		}
		return nil, NewExternalServiceError("CHAT_UPSTREAM_FAILED", "The assistant could not answer right now", errors.Join(ErrChatUpstreamFailed, err))
	}

	if sessionID := utils.TrimmedPtr(req.SessionID); sessionID != nil && f.chatRepo != nil {
		f.record(ctx, *sessionID, req, message, completion)
	}

	return &dto.ChatResponse{
		Reply:    completion.Reply,
		Provider: completion.Provider,
		Model:    completion.Model,
	}, nil
}

// record appends the exchange to the transcript; a failure here never costs the visitor the reply
func (f *ChatFlowImpl) record(ctx context.Context, sessionID string, req *dto.ChatRequest, message string, completion *services.ChatCompletion) {
	now := utils.UTCNow()
	visitor := utils.TrimmedPtr(req.VisitorID)
	page := utils.TrimmedPtr(req.Page)
	rows := []*models.TerminalChat{
		{SessionID: sessionID, VisitorID: visitor, Role: "user", Content: message, Page: page, Timestamp: now},
		{SessionID: sessionID, VisitorID: visitor, Role: "assistant", Content: completion.Reply, Page: page, Timestamp: now.Add(time.Millisecond)},
	}
	if err := f.chatRepo.SaveBatch(ctx, rows); err != nil {
		zap.L().Warn("failed to record chat exchange", zap.String("session_id", sessionID), zap.Error(err))
	}
}
