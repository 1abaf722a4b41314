package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewWaitlistRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		_, err := fixtures.CreateTestWaitlistEntry("Ada", "ada@example.com", base)
		require.NoError(t, err)
		_, err = fixtures.CreateTestWaitlistEntry("Grace", "grace@example.com", base.Add(time.Hour))
		require.NoError(t, err)

		t.Run("ByEmail", func(t *testing.T) {
			entry, err := repo.ByEmail(ctx, "ada@example.com")
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, "Ada", entry.Name)
		})

		t.Run("ByEmailNotFound", func(t *testing.T) {
			entry, err := repo.ByEmail(ctx, "nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, entry)
		})

		t.Run("NewestFirst", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.WaitlistFilter{}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "grace@example.com", rows[0].Email)
		})

		t.Run("SearchEscapesWildcards", func(t *testing.T) {
			search := "%"
			count, err := repo.Count(ctx, models.WaitlistFilter{Search: &search})
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)
		})

		t.Run("DuplicateEmailIsClassified", func(t *testing.T) {
			err := repo.Save(ctx, &models.WaitlistEntry{
				Name:      "Ada Again",
				Email:     "ada@example.com",
				IP:        "127.0.0.1",
				CreatedAt: utils.UTCNow(),
			})
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("Delete", func(t *testing.T) {
			entry, err := repo.ByEmail(ctx, "grace@example.com")
			require.NoError(t, err)
			n, err := repo.Delete(ctx, entry.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			n, err = repo.Delete(ctx, entry.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), n)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAnalyticsRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAnalyticsRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		day := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
		allTime := models.AnalyticsRange{Start: time.Unix(0, 0).UTC(), End: day.Add(48 * time.Hour)}

		t.Run("PageViewsAccumulateInOneBucket", func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, repo.IncrementPageView(ctx, "/pricing", day.Add(time.Duration(i)*time.Minute)))
			}
			rows, err := repo.PageViewsBetween(ctx, allTime)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, int64(5), rows[0].Count)
			assert.True(t, rows[0].Date.Equal(utils.StartOfDayUTC(day)))
		})

		t.Run("NextDayStartsANewBucket", func(t *testing.T) {
			require.NoError(t, repo.IncrementPageView(ctx, "/pricing", day.Add(24*time.Hour)))
			rows, err := repo.PageViewsBetween(ctx, allTime)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
		})

		t.Run("EventLabelIsRefreshed", func(t *testing.T) {
			require.NoError(t, repo.IncrementEvent(ctx, "click", "cta", "/", utils.ToPtr("Join"), day))
			require.NoError(t, repo.IncrementEvent(ctx, "click", "cta", "/", utils.ToPtr("Join now"), day))
			require.NoError(t, repo.IncrementEvent(ctx, "click", "cta", "/", nil, day))

			rows, err := repo.EventsBetween(ctx, allTime)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, int64(3), rows[0].Count)
			assert.Equal(t, "Join now", utils.DerefString(rows[0].ElementName))
		})

		t.Run("Clear", func(t *testing.T) {
			pageViews, events, err := repo.Clear(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(2), pageViews)
			assert.Equal(t, int64(1), events)

			rows, err := repo.PageViewsBetween(ctx, allTime)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestToolRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewToolRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestTool("Ollama", "Local Inference", true, "LLM", "Runtime")
		require.NoError(t, err)
		_, err = fixtures.CreateTestTool("YOLO", "Vision", true, "Detection")
		require.NoError(t, err)
		hidden, err := fixtures.CreateTestTool("Legacy", "Vision", false, "Detection")
		require.NoError(t, err)

		t.Run("ByNameLoadsTagsInOrder", func(t *testing.T) {
			tool, err := repo.ByName(ctx, "Ollama")
			require.NoError(t, err)
			require.NotNil(t, tool)
			assert.Equal(t, []string{"LLM", "Runtime"}, tool.TagNames())
		})

		t.Run("FilterByTypeIsCaseInsensitive", func(t *testing.T) {
			typ := "detection"
			rows, err := repo.ByFilter(ctx, models.ToolFilter{Type: &typ, IsActive: utils.ToPtr(true)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "YOLO", rows[0].Name)
		})

		t.Run("FacetsOfActiveTools", func(t *testing.T) {
			categories, err := repo.DistinctCategories(ctx, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Local Inference", "Vision"}, categories)

			types, err := repo.DistinctTypes(ctx, true)
			require.NoError(t, err)
			assert.Equal(t, []string{"Detection", "LLM", "Runtime"}, types)
		})

		t.Run("ReplaceTags", func(t *testing.T) {
			require.NoError(t, repo.ReplaceTags(ctx, hidden.ID, []string{"Tracking", "Detection"}))
			tool, err := repo.ByID(ctx, hidden.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"Tracking", "Detection"}, tool.TagNames())
		})

		t.Run("DeleteRemovesTags", func(t *testing.T) {
			n, err := repo.Delete(ctx, hidden.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			var tags int64
			require.NoError(t, testDB.DB.Model(&models.ToolTag{}).Where("tool_id = ?", hidden.ID).Count(&tags).Error)
			assert.Zero(t, tags)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTerminalChatRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTerminalChatRepository(testDB.DB)
		ctx := context.Background()

		day := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
		turns := []*models.TerminalChat{
			{SessionID: "s1", Role: "user", Content: "hi", Timestamp: day.Add(time.Hour)},
			{SessionID: "s1", Role: "assistant", Content: "hello", Timestamp: day.Add(2 * time.Hour)},
			{SessionID: "s2", Role: "user", Content: "later", Timestamp: day.Add(24 * time.Hour)},
		}
		require.NoError(t, repo.SaveBatch(ctx, turns))

		t.Run("UntilIsExclusive", func(t *testing.T) {
			until := day.Add(24 * time.Hour)
			rows, err := repo.ByFilter(ctx, models.TerminalChatFilter{Until: &until}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "hello", rows[0].Content)
		})

		t.Run("BySession", func(t *testing.T) {
			session := "s2"
			count, err := repo.Count(ctx, models.TerminalChatFilter{SessionID: &session})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("Clear", func(t *testing.T) {
			n, err := repo.Clear(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestContactFormRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewContactFormRepository(testDB.DB)
		ctx := context.Background()

		form := &models.ContactForm{Name: "Lin", Email: "lin@example.com", Message: "Hello", Status: "new"}
		require.NoError(t, repo.Save(ctx, form))

		t.Run("StatusDefaultsAndNormalizes", func(t *testing.T) {
			saved, err := repo.ByID(ctx, form.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ContactStatusNew, saved.Status)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			n, err := repo.UpdateStatus(ctx, form.ID, models.ContactStatusClosed)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			status := models.ContactStatusClosed
			count, err := repo.Count(ctx, models.ContactFormFilter{Status: &status})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("UpdateStatusMissing", func(t *testing.T) {
			n, err := repo.UpdateStatus(ctx, form.ID+100, models.ContactStatusClosed)
			require.NoError(t, err)
			assert.Zero(t, n)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("ByEmailIgnoresCase", func(t *testing.T) {
			user, err := repo.ByEmail(ctx, "  "+admin.Email)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, admin.ID, user.ID)
		})

		t.Run("TouchLastLogin", func(t *testing.T) {
			at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
			require.NoError(t, repo.TouchLastLogin(ctx, admin.ID, at))
			user, err := repo.ByID(ctx, admin.ID)
			require.NoError(t, err)
			require.NotNil(t, user.LastLoginAt)
			assert.True(t, user.LastLoginAt.Equal(at))
		})

		return nil
	})
	require.NoError(t, err)
}
