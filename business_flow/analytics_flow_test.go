package businessflow_test

import (
	"encoding/json"
	"testing"

	"github.com/aetherinc/aether-waitlist/app/dto"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAnalyticsExport(t *testing.T, file *businessflow.ExportFile) dto.AnalyticsExport {
	t.Helper()
	require.Equal(t, "application/json", file.ContentType)
	var doc dto.AnalyticsExport
	require.NoError(t, json.Unmarshal(file.Body, &doc))
	return doc
}

func TestAnalyticsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := businessflow.NewAnalyticsFlow(repository.NewAnalyticsRepository(testDB.DB))
		ctx := testingutil.CreateTestContext()

		t.Run("ClicksAccumulate", func(t *testing.T) {
			const clicks = 7
			for i := 0; i < clicks; i++ {
				require.NoError(t, flow.RecordEvent(ctx, &dto.AnalyticsEventRequest{
					EventType:   "click",
					ElementID:   "join-cta",
					ElementName: utils.ToPtr("Join the waitlist"),
					Page:        "/",
				}))
			}
			require.NoError(t, flow.RecordPageView(ctx, &dto.PageViewRequest{Page: "/"}))

			file, err := flow.Export(ctx, nil)
			require.NoError(t, err)
			doc := decodeAnalyticsExport(t, file)
			require.Len(t, doc.Events, 1)
			assert.Equal(t, int64(clicks), doc.Events[0].Count)
			require.Len(t, doc.PageViews, 1)
			assert.Equal(t, int64(1), doc.PageViews[0].Count)
			assert.NotEmpty(t, doc.ExportDate)
		})

		t.Run("RequiredFields", func(t *testing.T) {
			err := flow.RecordPageView(ctx, &dto.PageViewRequest{Page: "  "})
			require.Error(t, err)
			assert.Equal(t, "ANALYTICS_FIELDS_REQUIRED", businessflow.ToBusinessError(err).Code)

			err = flow.RecordEvent(ctx, &dto.AnalyticsEventRequest{EventType: "click", Page: "/"})
			require.Error(t, err)
			assert.Equal(t, "ANALYTICS_FIELDS_REQUIRED", businessflow.ToBusinessError(err).Code)
		})

		t.Run("ExportRangeValidation", func(t *testing.T) {
			_, err := flow.Export(ctx, &dto.AnalyticsExportQuery{StartDate: "yesterday"})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidDateRange(err))

			_, err = flow.Export(ctx, &dto.AnalyticsExportQuery{StartDate: "2025-02-01", EndDate: "2025-01-01"})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidDateRange(err))
		})

		t.Run("ExportRangeExcludesToday", func(t *testing.T) {
			file, err := flow.Export(ctx, &dto.AnalyticsExportQuery{StartDate: "2020-01-01", EndDate: "2020-01-31"})
			require.NoError(t, err)
			doc := decodeAnalyticsExport(t, file)
			assert.Empty(t, doc.PageViews)
			assert.Empty(t, doc.Events)
			assert.Equal(t, "2020-01-01T00:00:00Z", doc.DateRange.Start)
		})

		t.Run("ExportXLSX", func(t *testing.T) {
			file, err := flow.Export(ctx, &dto.AnalyticsExportQuery{Format: "xlsx"})
			require.NoError(t, err)
			assert.Contains(t, file.Filename, "analytics-export-")
			assert.NotEmpty(t, file.Body)
		})

		t.Run("Summary", func(t *testing.T) {
			summary, err := flow.Summary(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, 7, summary.Days)
			assert.Equal(t, int64(1), summary.TotalViews)
			assert.Equal(t, int64(7), summary.TotalClicks)
		})

		t.Run("Clear", func(t *testing.T) {
			result, err := flow.Clear(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.PageViewsDeleted)
			assert.Equal(t, int64(1), result.EventsDeleted)

			file, err := flow.Export(ctx, nil)
			require.NoError(t, err)
			doc := decodeAnalyticsExport(t, file)
			assert.Empty(t, doc.PageViews)
			assert.Empty(t, doc.Events)
		})

		return nil
	})
	require.NoError(t, err)
}
