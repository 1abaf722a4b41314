package businessflow

import (
	"encoding/json"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/utils"
)

// ClientMetadata holds client-related information for auditing and metrics
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	if ipAddress == "" {
		ipAddress = utils.UnknownIP
	}
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func ToToolDTO(tool models.Tool) dto.ToolDTO {
	return dto.ToolDTO{
		ID:          tool.ID,
		Name:        tool.Name,
		Category:    tool.Category,
		Type:        tool.TagNames(),
		License:     tool.License,
		Description: tool.Description,
		URL:         tool.URL,
		Pricing:     tool.Pricing,
		IsActive:    utils.IsTrue(tool.IsActive),
		CreatedAt:   tool.CreatedAt,
		UpdatedAt:   tool.UpdatedAt,
	}
}

func ToToolDTOs(tools []*models.Tool) []dto.ToolDTO {
	out := make([]dto.ToolDTO, 0, len(tools))
	for _, t := range tools {
		out = append(out, ToToolDTO(*t))
	}
	return out
}

func ToWaitlistEntryDTO(e models.WaitlistEntry) dto.WaitlistEntryDTO {
	return dto.WaitlistEntryDTO{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Reason:      e.Reason,
		UseCase:     e.UseCase,
		EarlyAccess: e.EarlyAccess,
		IP:          e.IP,
		CreatedAt:   e.CreatedAt,
	}
}

func ToContactFormDTO(f models.ContactForm) dto.ContactFormDTO {
	return dto.ContactFormDTO{
		ID:          f.ID,
		Name:        f.Name,
		Email:       f.Email,
		Company:     f.Company,
		Subject:     f.Subject,
		Message:     f.Message,
		ServiceType: f.ServiceType,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func ToPageViewDTO(a models.Analytics) dto.PageViewDTO {
	return dto.PageViewDTO{ID: a.ID, Page: a.Page, Date: a.Date.UTC(), Count: a.Count}
}

func ToAnalyticsEventDTO(e models.AnalyticsEvent) dto.AnalyticsEventDTO {
	return dto.AnalyticsEventDTO{
		ID:          e.ID,
		EventType:   e.EventType,
		ElementID:   e.ElementID,
		ElementName: e.ElementName,
		Page:        e.Page,
		Date:        e.Date.UTC(),
		Count:       e.Count,
	}
}

// ToTerminalChatDTO decodes the stored metadata; a row with unreadable metadata is returned without it
func ToTerminalChatDTO(c models.TerminalChat) dto.TerminalChatDTO {
	out := dto.TerminalChatDTO{
		ID:        c.ID,
		SessionID: c.SessionID,
		VisitorID: c.VisitorID,
		Role:      c.Role,
		Content:   c.Content,
		Page:      c.Page,
		Timestamp: c.Timestamp.UTC(),
	}
	if c.Metadata != nil && *c.Metadata != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(*c.Metadata), &meta); err == nil {
			out.Metadata = meta
		}
	}
	return out
}

func ToSessionUserDTO(u models.User) dto.SessionUserDTO {
	return dto.SessionUserDTO{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

func formatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
