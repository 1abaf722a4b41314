package businessflow_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistFlow_Join(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewWaitlistFlow(repository.NewWaitlistRepository(testDB.DB))
		ctx := testingutil.CreateTestContext()
		meta := businessflow.NewClientMetadata("203.0.113.7", "Mozilla/5.0")

		t.Run("Success", func(t *testing.T) {
			entry, err := flow.Join(ctx, &dto.JoinWaitlistRequest{
				Name:        "  Ada Lovelace ",
				Email:       "Ada@Example.com",
				UseCase:     utils.ToPtr("local LLM for legal docs"),
				EarlyAccess: utils.ToPtr(true),
			}, meta)
			require.NoError(t, err)
			assert.NotZero(t, entry.ID)
			assert.Equal(t, "Ada Lovelace", entry.Name)
			assert.Equal(t, "ada@example.com", entry.Email)
			assert.True(t, entry.EarlyAccess)
			assert.Equal(t, "203.0.113.7", entry.IP)
		})

		t.Run("DuplicateEmailIsConflict", func(t *testing.T) {
			_, err := flow.Join(ctx, &dto.JoinWaitlistRequest{Name: "Ada", Email: "ADA@example.com"}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyInWaitlist(err))

			be := businessflow.ToBusinessError(err)
			assert.Equal(t, http.StatusConflict, be.HTTPStatus())
			assert.Equal(t, "EMAIL_ALREADY_IN_WAITLIST", be.Code)
		})

		t.Run("NameRequired", func(t *testing.T) {
			_, err := flow.Join(ctx, &dto.JoinWaitlistRequest{Name: "   ", Email: "x@example.com"}, meta)
			require.Error(t, err)
			assert.True(t, businessflow.IsNameRequired(err))
			assert.Equal(t, "Name is required", businessflow.ToBusinessError(err).Message)
		})

		t.Run("InvalidEmail", func(t *testing.T) {
			for _, email := range []string{"", "not-an-email", "a@b", "a b@example.com"} {
				_, err := flow.Join(ctx, &dto.JoinWaitlistRequest{Name: "X", Email: email}, meta)
				require.Error(t, err, email)
				assert.True(t, businessflow.IsInvalidEmail(err), email)
				assert.Equal(t, http.StatusBadRequest, businessflow.ToBusinessError(err).HTTPStatus())
			}
		})

		t.Run("MissingMetadataUsesUnknownIP", func(t *testing.T) {
			entry, err := flow.Join(ctx, &dto.JoinWaitlistRequest{Name: "Grace", Email: "grace@example.com"}, nil)
			require.NoError(t, err)
			assert.Equal(t, utils.UnknownIP, entry.IP)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestWaitlistFlow_Admin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewWaitlistFlow(repository.NewWaitlistRepository(testDB.DB))
		ctx := testingutil.CreateTestContext()

		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			_, err := flow.Join(ctx, &dto.JoinWaitlistRequest{Name: "Visitor", Email: email}, nil)
			require.NoError(t, err)
		}

		t.Run("ListPaginates", func(t *testing.T) {
			resp, err := flow.AdminList(ctx, &dto.ListQuery{Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.Total)
			assert.Len(t, resp.Entries, 2)
			assert.True(t, resp.Pagination.HasMore)
		})

		t.Run("Search", func(t *testing.T) {
			resp, err := flow.AdminList(ctx, &dto.ListQuery{Search: "b@"})
			require.NoError(t, err)
			require.Len(t, resp.Entries, 1)
			assert.Equal(t, "b@example.com", resp.Entries[0].Email)
		})

		t.Run("ExportJSON", func(t *testing.T) {
			file, err := flow.Export(ctx, "json")
			require.NoError(t, err)
			assert.Equal(t, "application/json", file.ContentType)

			var doc struct {
				Total   int                    `json:"total"`
				Entries []dto.WaitlistEntryDTO `json:"entries"`
			}
			require.NoError(t, json.Unmarshal(file.Body, &doc))
			assert.Equal(t, 3, doc.Total)
			assert.Len(t, doc.Entries, 3)
		})

		t.Run("ExportXLSX", func(t *testing.T) {
			file, err := flow.Export(ctx, "xlsx")
			require.NoError(t, err)
			assert.Contains(t, file.Filename, ".xlsx")
			assert.NotEmpty(t, file.Body)
		})

		t.Run("DeleteThenNotFound", func(t *testing.T) {
			resp, err := flow.AdminList(ctx, &dto.ListQuery{Search: "c@"})
			require.NoError(t, err)
			require.Len(t, resp.Entries, 1)
			id := resp.Entries[0].ID

			require.NoError(t, flow.AdminDelete(ctx, id))
			err = flow.AdminDelete(ctx, id)
			require.Error(t, err)
			assert.True(t, businessflow.IsWaitlistEntryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
