package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
)

// WaitlistJoinedMessage is returned to the visitor after a successful signup
const WaitlistJoinedMessage = "Successfully joined the waitlist!"

// WaitlistFlow handles public signups and the admin view of the waitlist
type WaitlistFlow interface {
	Join(ctx context.Context, req *dto.JoinWaitlistRequest, metadata *ClientMetadata) (*dto.WaitlistEntryDTO, error)
	AdminList(ctx context.Context, req *dto.ListQuery) (*dto.AdminWaitlistListResponse, error)
	AdminDelete(ctx context.Context, id uint) error
	Export(ctx context.Context, format string) (*ExportFile, error)
}

// WaitlistFlowImpl implements WaitlistFlow
type WaitlistFlowImpl struct {
	waitlistRepo repository.WaitlistRepository
}

func NewWaitlistFlow(waitlistRepo repository.WaitlistRepository) WaitlistFlow {
	return &WaitlistFlowImpl{waitlistRepo: waitlistRepo}
}

func emailExistsError(err error) *BusinessError {
	return NewConflictError("EMAIL_ALREADY_IN_WAITLIST", "Email already exists in waitlist", err)
}

// Join adds a visitor to the waitlist. The email is the identity: a second signup with the same address is a conflict.
func (f *WaitlistFlowImpl) Join(ctx context.Context, req *dto.JoinWaitlistRequest, metadata *ClientMetadata) (*dto.WaitlistEntryDTO, error) {
	if req == nil {
		return nil, NewValidationError("NAME_REQUIRED", "Name is required", ErrNameRequired)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("NAME_REQUIRED", "Name is required", ErrNameRequired)
	}
	email := utils.NormalizeEmail(req.Email)
	if !utils.IsBasicEmail(email) {
		return nil, NewValidationError("INVALID_EMAIL", "Valid email is required", ErrInvalidEmail)
	}

	existing, err := f.waitlistRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, emailExistsError(ErrEmailAlreadyInWaitlist)
	}

	if metadata == nil {
		metadata = NewClientMetadata(utils.UnknownIP, "")
	}
	var ua *string
	if metadata.UserAgent != "" {
		ua = utils.ToPtr(utils.Truncate(metadata.UserAgent, 512))
	}

	entry := models.WaitlistEntry{
		Name:        name,
		Email:       email,
		Reason:      utils.TrimmedPtr(req.Reason),
		UseCase:     utils.TrimmedPtr(req.UseCase),
		EarlyAccess: utils.IsTrue(req.EarlyAccess),
		IP:          metadata.IPAddress,
		UserAgent:   ua,
		CreatedAt:   utils.UTCNow(),
	}
	if err := f.waitlistRepo.Save(ctx, &entry); err != nil {
		// two signups raced past the lookup; the unique index decides
		if repository.IsDuplicateKey(err) {
			return nil, emailExistsError(err)
		}
		return nil, err
	}

	out := ToWaitlistEntryDTO(entry)
	return &out, nil
}

func (f *WaitlistFlowImpl) AdminList(ctx context.Context, req *dto.ListQuery) (*dto.AdminWaitlistListResponse, error) {
	if req == nil {
		req = &dto.ListQuery{}
	}
	limit := utils.ClampLimit(req.Limit, utils.DefaultAdminListLimit, utils.MaxAdminListLimit)
	offset := max(req.Offset, 0)

	filter := models.WaitlistFilter{}
	if s := strings.TrimSpace(req.Search); s != "" {
		filter.Search = &s
	}

	total, err := f.waitlistRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.waitlistRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.WaitlistEntryDTO, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, ToWaitlistEntryDTO(*r))
	}
	return &dto.AdminWaitlistListResponse{
		Entries:    entries,
		Total:      total,
		Pagination: dto.NewPagination(limit, offset, total),
	}, nil
}

func (f *WaitlistFlowImpl) AdminDelete(ctx context.Context, id uint) error {
	n, err := f.waitlistRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundError("WAITLIST_ENTRY_NOT_FOUND", "Waitlist entry not found", ErrWaitlistEntryNotFound)
	}
	return nil
}

// Export renders the whole waitlist, newest first, as json or xlsx
func (f *WaitlistFlowImpl) Export(ctx context.Context, format string) (*ExportFile, error) {
	rows, err := f.waitlistRepo.ByFilter(ctx, models.WaitlistFilter{}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	stamp := utils.UTCNow().Format(utils.DateOnlyLayout)

	switch strings.ToLower(format) {
	case "", "json":
		entries := make([]dto.WaitlistEntryDTO, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, ToWaitlistEntryDTO(*r))
		}
		body, err := json.MarshalIndent(map[string]any{
			"exportDate": formatISO(utils.UTCNow()),
			"total":      len(entries),
			"entries":    entries,
		}, "", "  ")
		if err != nil {
			return nil, NewServerError("EXPORT_ENCODE_FAILED", "Failed to encode export", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("waitlist-export-%s.json", stamp),
			ContentType: "application/json",
			Body:        body,
		}, nil
	case "xlsx":
		sheet := xlsxSheet{
			Name:   "waitlist",
			Header: []string{"id", "name", "email", "reason", "use_case", "early_access", "ip", "created_at"},
		}
		for _, r := range rows {
			sheet.Rows = append(sheet.Rows, []string{
				strconv.FormatUint(uint64(r.ID), 10),
				r.Name,
				r.Email,
				utils.DerefString(r.Reason),
				utils.DerefString(r.UseCase),
				strconv.FormatBool(r.EarlyAccess),
				r.IP,
				r.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		body, err := buildWorkbook(sheet)
		if err != nil {
			return nil, NewServerError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("waitlist-export-%s.xlsx", stamp),
			ContentType: xlsxContentType,
			Body:        body,
		}, nil
	default:
		return nil, NewValidationError("INVALID_EXPORT_FORMAT", "format must be json or xlsx", nil)
	}
}
