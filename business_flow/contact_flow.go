package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/services"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"go.uber.org/zap"
)

// ContactFlow stores contact form submissions, notifies the team and lets admins triage them
type ContactFlow interface {
	Submit(ctx context.Context, req *dto.ContactRequest, metadata *ClientMetadata) (*dto.ContactSubmitResult, error)
	AdminList(ctx context.Context, req *dto.ContactListQuery) (*dto.ContactListResponse, error)
	UpdateStatus(ctx context.Context, id uint, req *dto.UpdateContactStatusRequest) (*dto.ContactFormDTO, error)
}

// ContactFlowImpl implements ContactFlow
type ContactFlowImpl struct {
	contactRepo repository.ContactFormRepository
	mailer      services.EmailService
	adminEmail  string
}

func NewContactFlow(contactRepo repository.ContactFormRepository, mailer services.EmailService, adminEmail string) ContactFlow {
	if mailer == nil {
		mailer = services.NewDisabledEmailService()
	}
	return &ContactFlowImpl{contactRepo: contactRepo, mailer: mailer, adminEmail: strings.TrimSpace(adminEmail)}
}

// Submit persists the form first; notification failures never lose a submission and are reported in the result
func (f *ContactFlowImpl) Submit(ctx context.Context, req *dto.ContactRequest, metadata *ClientMetadata) (*dto.ContactSubmitResult, error) {
	if req == nil {
		return nil, NewValidationError("CONTACT_FIELDS_REQUIRED", "Name, email and message are required", ErrContactFieldsRequired)
	}
	name := strings.TrimSpace(req.Name)
	email := utils.NormalizeEmail(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return nil, NewValidationError("CONTACT_FIELDS_REQUIRED", "Name, email and message are required", ErrContactFieldsRequired)
	}
	if !utils.IsBasicEmail(email) {
		return nil, NewValidationError("INVALID_EMAIL", "Valid email is required", ErrInvalidEmail)
	}

	now := utils.UTCNow()
	form := models.ContactForm{
		Name:        name,
		Email:       email,
		Company:     utils.TrimmedPtr(req.Company),
		Subject:     utils.TrimmedPtr(req.Subject),
		Message:     message,
		ServiceType: utils.TrimmedPtr(req.ServiceType),
		Status:      models.ContactStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.contactRepo.Save(ctx, &form); err != nil {
		return nil, err
	}

	result := &dto.ContactSubmitResult{ID: form.ID, EmailProvider: f.mailer.Provider()}
	if f.adminEmail == "" {
		return result, nil
	}

	delivery, err := f.mailer.Send(ctx, contactNotification(f.adminEmail, form))
	if err != nil {
		zap.L().Warn("contact notification failed",
			zap.Uint("contact_id", form.ID),
			zap.String("provider", f.mailer.Provider()),
			zap.Error(err))
		return result, nil
	}
	result.EmailDelivered = delivery.Delivered
	result.EmailProvider = delivery.Provider
	return result, nil
}

func contactNotification(to string, form models.ContactForm) services.EmailMessage {
	subject := "New contact form submission"
	if form.Subject != nil {
		subject = fmt.Sprintf("New contact: %s", utils.Truncate(*form.Subject, 120))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", form.Name)
	fmt.Fprintf(&b, "Email: %s\n", form.Email)
	if form.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", *form.Company)
	}
	if form.ServiceType != nil {
		fmt.Fprintf(&b, "Service: %s\n", *form.ServiceType)
	}
	fmt.Fprintf(&b, "Submitted: %s\n\n", form.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString(form.Message)
	b.WriteString("\n")

	return services.EmailMessage{
		To:      []string{to},
		ReplyTo: form.Email,
		Subject: subject,
		Text:    b.String(),
	}
}

func (f *ContactFlowImpl) AdminList(ctx context.Context, req *dto.ContactListQuery) (*dto.ContactListResponse, error) {
	if req == nil {
		req = &dto.ContactListQuery{}
	}
	limit := utils.ClampLimit(req.Limit, utils.DefaultAdminListLimit, utils.MaxAdminListLimit)
	offset := max(req.Offset, 0)

	filter := models.ContactFormFilter{}
	if s := strings.ToUpper(strings.TrimSpace(req.Status)); s != "" {
		if !models.IsValidContactStatus(s) {
			return nil, invalidContactStatusError()
		}
		filter.Status = &s
	}

	total, err := f.contactRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.contactRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}

	forms := make([]dto.ContactFormDTO, 0, len(rows))
	for _, r := range rows {
		forms = append(forms, ToContactFormDTO(*r))
	}
	return &dto.ContactListResponse{
		Forms:      forms,
		Total:      total,
		Pagination: dto.NewPagination(limit, offset, total),
	}, nil
}

func invalidContactStatusError() *BusinessError {
	return NewValidationError("INVALID_CONTACT_STATUS", "Status must be one of NEW, RESPONDED, CLOSED", ErrInvalidContactStatus).
		WithDetails(map[string]any{"allowed": models.ContactStatuses})
}

// UpdateStatus moves a form to any status of the enum; there is no transition order
func (f *ContactFlowImpl) UpdateStatus(ctx context.Context, id uint, req *dto.UpdateContactStatusRequest) (*dto.ContactFormDTO, error) {
	if req == nil {
		return nil, invalidContactStatusError()
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !models.IsValidContactStatus(status) {
		return nil, invalidContactStatusError()
	}

	n, err := f.contactRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, NewNotFoundError("CONTACT_FORM_NOT_FOUND", "Contact form not found", ErrContactFormNotFound)
	}

	form, err := f.contactRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, NewNotFoundError("CONTACT_FORM_NOT_FOUND", "Contact form not found", ErrContactFormNotFound)
	}
	out := ToContactFormDTO(*form)
	return &out, nil
}
