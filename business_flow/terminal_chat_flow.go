package businessflow

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
)

// TerminalChatFlow appends chat transcript turns and serves them to admins. Rows are never edited.
type TerminalChatFlow interface {
	Log(ctx context.Context, req *dto.TerminalChatRequest, metadata *ClientMetadata) (*dto.TerminalChatDTO, error)
	AdminList(ctx context.Context, req *dto.TerminalChatListQuery) (*dto.TerminalChatListResponse, error)
	Clear(ctx context.Context) (int64, error)
}

// TerminalChatFlowImpl implements TerminalChatFlow
type TerminalChatFlowImpl struct {
	chatRepo repository.TerminalChatRepository
}

func NewTerminalChatFlow(chatRepo repository.TerminalChatRepository) TerminalChatFlow {
	return &TerminalChatFlowImpl{chatRepo: chatRepo}
}

func (f *TerminalChatFlowImpl) Log(ctx context.Context, req *dto.TerminalChatRequest, metadata *ClientMetadata) (*dto.TerminalChatDTO, error) {
	if req == nil {
		return nil, NewValidationError("TERMINAL_CHAT_FIELDS_REQUIRED", "sessionId, role and content are required", ErrTerminalChatFieldsRequired)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if sessionID == "" || role == "" || strings.TrimSpace(req.Content) == "" {
		return nil, NewValidationError("TERMINAL_CHAT_FIELDS_REQUIRED", "sessionId, role and content are required", ErrTerminalChatFieldsRequired)
	}

	row := models.TerminalChat{
		SessionID: sessionID,
		VisitorID: utils.TrimmedPtr(req.VisitorID),
		Role:      role,
		Content:   req.Content,
		Page:      utils.TrimmedPtr(req.Page),
		Timestamp: utils.UTCNow(),
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, NewValidationError("INVALID_METADATA", "metadata must be a JSON object", err)
		}
		row.Metadata = utils.ToPtr(string(raw))
	}

	if err := f.chatRepo.Save(ctx, &row); err != nil {
		return nil, err
	}
	out := ToTerminalChatDTO(row)
	return &out, nil
}

// AdminList reads transcripts newest first. startDate is inclusive; a date-only endDate
// includes that whole day, so its bound is the next midnight (exclusive).
func (f *TerminalChatFlowImpl) AdminList(ctx context.Context, req *dto.TerminalChatListQuery) (*dto.TerminalChatListResponse, error) {
	if req == nil {
		req = &dto.TerminalChatListQuery{}
	}
	filter := models.TerminalChatFilter{}
	if s := strings.TrimSpace(req.SessionID); s != "" {
		filter.SessionID = &s
	}
	if v := strings.TrimSpace(req.VisitorID); v != "" {
		filter.VisitorID = &v
	}
	if strings.TrimSpace(req.StartDate) != "" {
		t, _, err := utils.ParseDateParam(req.StartDate)
		if err != nil {
			return nil, NewValidationError("INVALID_START_DATE", "Invalid startDate: expected YYYY-MM-DD or RFC3339", ErrInvalidDateRange)
		}
		filter.Since = &t
	}
	if strings.TrimSpace(req.EndDate) != "" {
		t, dateOnly, err := utils.ParseDateParam(req.EndDate)
		if err != nil {
			return nil, NewValidationError("INVALID_END_DATE", "Invalid endDate: expected YYYY-MM-DD or RFC3339", ErrInvalidDateRange)
		}
		if dateOnly {
			t = t.Add(24 * time.Hour)
		}
		filter.Until = &t
	}
	if filter.Since != nil && filter.Until != nil && !filter.Since.Before(*filter.Until) {
		return nil, NewValidationError("INVALID_DATE_RANGE", "startDate must be before endDate", ErrInvalidDateRange)
	}

	limit := utils.ClampLimit(req.Limit, utils.DefaultTerminalChatLimit, utils.MaxTerminalChatLimit)
	rows, err := f.chatRepo.ByFilter(ctx, filter, "", limit, 0)
	if err != nil {
		return nil, err
	}

	chats := make([]dto.TerminalChatDTO, 0, len(rows))
	for _, r := range rows {
		chats = append(chats, ToTerminalChatDTO(*r))
	}
	return &dto.TerminalChatListResponse{Chats: chats, Count: len(chats)}, nil
}

func (f *TerminalChatFlowImpl) Clear(ctx context.Context) (int64, error) {
	return f.chatRepo.Clear(ctx)
}
