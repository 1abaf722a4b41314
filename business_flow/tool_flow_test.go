package businessflow_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolFlow_PublicList(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewToolFlow(repository.NewToolRepository(testDB.DB), testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		for i := 1; i <= 5; i++ {
			_, err := fixtures.CreateTestTool(fmt.Sprintf("Vision %d", i), "Vision", true, "Detection")
			require.NoError(t, err)
		}
		_, err := fixtures.CreateTestTool("Ollama", "Local Inference", true, "LLM")
		require.NoError(t, err)
		hidden, err := fixtures.CreateTestTool("Retired", "Audio", false, "Speech")
		require.NoError(t, err)

		t.Run("CategoryPagination", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListToolsQuery{Category: "Vision", Limit: 2})
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, int64(5), resp.Total)
			require.Len(t, resp.Tools, 2)
			assert.Equal(t, "Vision 1", resp.Tools[0].Name)
			assert.Equal(t, 2, resp.Pagination.Limit)
			assert.True(t, resp.Pagination.HasMore)

			last, err := flow.List(ctx, &dto.ListToolsQuery{Category: "Vision", Limit: 2, Offset: 4})
			require.NoError(t, err)
			assert.Len(t, last.Tools, 1)
			assert.False(t, last.Pagination.HasMore)
		})

		t.Run("FacetsCoverActiveToolsOnly", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListToolsQuery{})
			require.NoError(t, err)
			assert.Equal(t, int64(6), resp.Total)
			assert.Equal(t, []string{"Local Inference", "Vision"}, resp.Categories)
			assert.Equal(t, []string{"Detection", "LLM"}, resp.Types)
			assert.Equal(t, utils.DefaultToolsLimit, resp.Pagination.Limit)
		})

		t.Run("LimitIsClamped", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListToolsQuery{Limit: 10_000})
			require.NoError(t, err)
			assert.Equal(t, utils.MaxToolsLimit, resp.Pagination.Limit)
		})

		t.Run("SearchMatchesDescription", func(t *testing.T) {
			resp, err := flow.List(ctx, &dto.ListToolsQuery{Search: "ollama is a"})
			require.NoError(t, err)
			require.Len(t, resp.Tools, 1)
			assert.Equal(t, "Ollama", resp.Tools[0].Name)
		})

		t.Run("InactiveToolIsHidden", func(t *testing.T) {
			_, err := flow.Get(ctx, hidden.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsToolNotFound(err))
			assert.Equal(t, http.StatusNotFound, businessflow.ToBusinessError(err).HTTPStatus())

			tool, err := flow.AdminGet(ctx, hidden.ID)
			require.NoError(t, err)
			assert.False(t, tool.IsActive)
		})

		t.Run("AdminListSeesInactive", func(t *testing.T) {
			resp, err := flow.AdminList(ctx, &dto.ListToolsQuery{IsActive: utils.ToPtr(false)})
			require.NoError(t, err)
			require.Len(t, resp.Tools, 1)
			assert.Equal(t, "Retired", resp.Tools[0].Name)
			assert.Contains(t, resp.Categories, "Audio")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestToolFlow_AdminWrites(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewToolFlow(repository.NewToolRepository(testDB.DB), testDB.DB)
		ctx := testingutil.CreateTestContext()

		created, err := flow.Create(ctx, &dto.AdminToolRequest{
			Name:        "vLLM",
			Description: "High throughput serving",
			Category:    "Local Inference",
			Type:        []string{" LLM ", "Serving", "llm", ""},
			License:     "Apache-2.0",
		})
		require.NoError(t, err)

		t.Run("CreateNormalizesTagsAndDefaultsActive", func(t *testing.T) {
			assert.Equal(t, []string{"LLM", "Serving"}, created.Type)
			assert.True(t, created.IsActive)
		})

		t.Run("DuplicateNameIsConflict", func(t *testing.T) {
			_, err := flow.Create(ctx, &dto.AdminToolRequest{Name: "vLLM", Description: "again", Category: "X"})
			require.Error(t, err)
			assert.True(t, businessflow.IsToolNameExists(err))
			assert.Equal(t, http.StatusConflict, businessflow.ToBusinessError(err).HTTPStatus())
		})

		t.Run("RequiredFields", func(t *testing.T) {
			_, err := flow.Create(ctx, &dto.AdminToolRequest{Name: "NoCategory", Description: "x"})
			require.Error(t, err)
			assert.True(t, businessflow.IsToolFieldsRequired(err))
		})

		t.Run("UpdateReplacesTags", func(t *testing.T) {
			updated, err := flow.Update(ctx, created.ID, &dto.AdminToolRequest{
				Name:        "vLLM",
				Description: "Serving engine",
				Category:    "Local Inference",
				Type:        []string{"Serving"},
				IsActive:    utils.ToPtr(false),
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"Serving"}, updated.Type)
			assert.False(t, updated.IsActive)
			assert.Equal(t, "Serving engine", updated.Description)
		})

		t.Run("RenameIntoTakenNameIsConflict", func(t *testing.T) {
			other, err := flow.Create(ctx, &dto.AdminToolRequest{Name: "llama.cpp", Description: "CPU inference", Category: "Local Inference"})
			require.NoError(t, err)
			_, err = flow.Update(ctx, other.ID, &dto.AdminToolRequest{Name: "vLLM", Description: "x", Category: "y"})
			require.Error(t, err)
			assert.True(t, businessflow.IsToolNameExists(err))
		})

		t.Run("UpdateMissing", func(t *testing.T) {
			_, err := flow.Update(ctx, 9999, &dto.AdminToolRequest{Name: "Ghost", Description: "x", Category: "y"})
			require.Error(t, err)
			assert.True(t, businessflow.IsToolNotFound(err))
		})

		t.Run("Delete", func(t *testing.T) {
			require.NoError(t, flow.Delete(ctx, created.ID))
			err := flow.Delete(ctx, created.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsToolNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestToolFlow_Import(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewToolFlow(repository.NewToolRepository(testDB.DB), testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestTool("Whisper", "Audio", true, "Speech")
		require.NoError(t, err)

		tsv := strings.Join([]string{
			"Name\tCategory\tType\tLicense\tDescription\tURL\tPricing\tisActive",
			"Whisper\tAudio\tSpeech,Transcription\tMIT\tSpeech recognition\thttps://github.com/openai/whisper\tFree\ttrue",
			"Qdrant\tVector DB\tDatabase\tApache-2.0\tVector search engine\thttps://qdrant.tech\t\tyes",
			"Broken\t\tX\tMIT\tmissing category\t\t\t",
			"BadFlag\tMisc\tX\tMIT\tbad isActive\t\t\tmaybe",
			"",
		}, "\n")

		result, err := flow.Import(ctx, strings.NewReader(tsv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 2, result.Skipped)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 4, result.Errors[0].Line)
		assert.Equal(t, 5, result.Errors[1].Line)

		resp, err := flow.AdminList(ctx, &dto.ListToolsQuery{Search: "Whisper"})
		require.NoError(t, err)
		require.Len(t, resp.Tools, 1)
		assert.Equal(t, []string{"Speech", "Transcription"}, resp.Tools[0].Type)
		assert.Equal(t, "Free", utils.DerefString(resp.Tools[0].Pricing))

		t.Run("MissingHeaderColumn", func(t *testing.T) {
			_, err := flow.Import(ctx, strings.NewReader("name\ttype\nX\tY\n"))
			require.Error(t, err)
			be := businessflow.ToBusinessError(err)
			assert.Equal(t, "IMPORT_FILE_INVALID", be.Code)
		})

		t.Run("SeedIsIdempotent", func(t *testing.T) {
			first, err := flow.Upsert(ctx, businessflow.StarterCatalog())
			require.NoError(t, err)
			second, err := flow.Upsert(ctx, businessflow.StarterCatalog())
			require.NoError(t, err)
			assert.Zero(t, second.Created)
			assert.Equal(t, first.Created+first.Updated, second.Updated)
		})

		return nil
	})
	require.NoError(t, err)
}
