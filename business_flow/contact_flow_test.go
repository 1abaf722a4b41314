package businessflow_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.EmailMessage
	err  error
}

func (m *recordingMailer) Provider() string { return "test" }

func (m *recordingMailer) Send(_ context.Context, msg services.EmailMessage) (*services.DeliveryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, msg)
	return &services.DeliveryResult{Delivered: true, Provider: "test"}, nil
}

func TestContactFlow_Submit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewContactFormRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("NotifiesAdmin", func(t *testing.T) {
			mailer := &recordingMailer{}
			flow := businessflow.NewContactFlow(repo, mailer, "team@aether.test")

			result, err := flow.Submit(ctx, &dto.ContactRequest{
				Name:    "Lin",
				Email:   "Lin@Example.com",
				Subject: utils.ToPtr("On-prem pilot"),
				Message: "We would like a pilot.",
			}, nil)
			require.NoError(t, err)
			assert.NotZero(t, result.ID)
			assert.True(t, result.EmailDelivered)

			require.Len(t, mailer.sent, 1)
			msg := mailer.sent[0]
			assert.Equal(t, []string{"team@aether.test"}, msg.To)
			assert.Equal(t, "lin@example.com", msg.ReplyTo)
			assert.Equal(t, "New contact: On-prem pilot", msg.Subject)
			assert.Contains(t, msg.Text, "We would like a pilot.")
		})

		t.Run("MailerFailureKeepsSubmission", func(t *testing.T) {
			flow := businessflow.NewContactFlow(repo, &recordingMailer{err: errors.New("smtp down")}, "team@aether.test")
			result, err := flow.Submit(ctx, &dto.ContactRequest{Name: "Kim", Email: "kim@example.com", Message: "Hi"}, nil)
			require.NoError(t, err)
			assert.False(t, result.EmailDelivered)

			saved, err := repo.ByID(ctx, result.ID)
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, models.ContactStatusNew, saved.Status)
		})

		t.Run("DisabledMailer", func(t *testing.T) {
			flow := businessflow.NewContactFlow(repo, nil, "")
			result, err := flow.Submit(ctx, &dto.ContactRequest{Name: "Sam", Email: "sam@example.com", Message: "Hi"}, nil)
			require.NoError(t, err)
			assert.False(t, result.EmailDelivered)
			assert.Equal(t, services.EmailProviderDisabled, result.EmailProvider)
		})

		t.Run("Validation", func(t *testing.T) {
			flow := businessflow.NewContactFlow(repo, nil, "")
			_, err := flow.Submit(ctx, &dto.ContactRequest{Name: "Sam", Email: "sam@example.com"}, nil)
			require.Error(t, err)
			assert.Equal(t, "CONTACT_FIELDS_REQUIRED", businessflow.ToBusinessError(err).Code)

			_, err = flow.Submit(ctx, &dto.ContactRequest{Name: "Sam", Email: "sam", Message: "Hi"}, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidEmail(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestContactFlow_Triage(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewContactFlow(repository.NewContactFormRepository(testDB.DB), nil, "")
		ctx := testingutil.CreateTestContext()

		submitted, err := flow.Submit(ctx, &dto.ContactRequest{Name: "Lin", Email: "lin@example.com", Message: "Hello"}, nil)
		require.NoError(t, err)

		t.Run("UpdateStatus", func(t *testing.T) {
			form, err := flow.UpdateStatus(ctx, submitted.ID, &dto.UpdateContactStatusRequest{Status: "responded"})
			require.NoError(t, err)
			assert.Equal(t, models.ContactStatusResponded, form.Status)
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, submitted.ID, &dto.UpdateContactStatusRequest{Status: "ARCHIVED"})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidContactStatus(err))
			assert.Equal(t, http.StatusBadRequest, businessflow.ToBusinessError(err).HTTPStatus())
		})

		t.Run("MissingForm", func(t *testing.T) {
			_, err := flow.UpdateStatus(ctx, submitted.ID+50, &dto.UpdateContactStatusRequest{Status: "CLOSED"})
			require.Error(t, err)
			assert.True(t, businessflow.IsContactFormNotFound(err))
		})

		t.Run("ListByStatus", func(t *testing.T) {
			resp, err := flow.AdminList(ctx, &dto.ContactListQuery{Status: models.ContactStatusResponded})
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.Total)

			resp, err = flow.AdminList(ctx, &dto.ContactListQuery{Status: models.ContactStatusNew})
			require.NoError(t, err)
			assert.Zero(t, resp.Total)
		})

		return nil
	})
	require.NoError(t, err)
}
