package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/config"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	testingutil "github.com/aetherinc/aether-waitlist/testing"
	"github.com/aetherinc/aether-waitlist/utils"
)

func newTestRunner(testDB *testingutil.TestDB) (*Runner, *bytes.Buffer) {
	cfg := config.FromEnv()
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Email.Provider = config.EmailProviderDisabled

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: cfg,
		Logger: log.New(io.Discard),
		Output: out,
		DB:     testDB.DB,
	})
	return runner, out
}

func run(runner *Runner, args ...string) error {
	root := &cli.Command{Name: "aetherctl", Commands: runner.register()}
	return root.Run(context.Background(), append([]string{"aetherctl"}, args...))
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})
	assert.NotNil(t, runner.config)
	assert.NotNil(t, runner.logger)
	assert.Equal(t, os.Stdout, runner.output)
	assert.Nil(t, runner.db)

	names := make([]string, 0)
	for _, c := range runner.register() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"migrate", "create-admin", "import-tools", "seed-tools", "send-test-email", "analytics"}, names)
}

func TestRunnerCommands(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := context.Background()

		t.Run("Migrate", func(t *testing.T) {
			runner, out := newTestRunner(testDB)
			require.NoError(t, run(runner, "migrate"))
			assert.Contains(t, out.String(), "Schema is up to date")
		})

		t.Run("CreateAdminThenReset", func(t *testing.T) {
			runner, out := newTestRunner(testDB)
			require.NoError(t, run(runner, "create-admin", "--email", "ops@aether.test", "--password", "long-password"))
			assert.Contains(t, out.String(), "Created admin ops@aether.test")

			out.Reset()
			require.NoError(t, run(runner, "create-admin", "--email", "ops@aether.test", "--password", "another-password"))
			assert.Contains(t, out.String(), "Updated password")

			user, err := repository.NewUserRepository(testDB.DB).ByEmail(ctx, "ops@aether.test")
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("another-password")))
		})

		t.Run("CreateAdminRejectsShortPassword", func(t *testing.T) {
			runner, _ := newTestRunner(testDB)
			assert.Error(t, run(runner, "create-admin", "--email", "x@aether.test", "--password", "short"))
		})

		t.Run("SeedTools", func(t *testing.T) {
			runner, out := newTestRunner(testDB)
			require.NoError(t, run(runner, "seed-tools"))
			assert.Contains(t, out.String(), "Created: ")

			var count int64
			require.NoError(t, testDB.DB.Model(&models.Tool{}).Count(&count).Error)
			assert.Equal(t, int64(len(businessflow.StarterCatalog())), count)
		})

		t.Run("ImportTools", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tools.tsv")
			tsv := "name\tcategory\tdescription\ttype\n" +
				"Qdrant\tVector DB\tVector search\tDatabase\n" +
				"\tMissing\tno name\t\n"
			require.NoError(t, os.WriteFile(path, []byte(tsv), 0o600))

			runner, out := newTestRunner(testDB)
			require.NoError(t, run(runner, "import-tools", "-f", path))
			assert.Contains(t, out.String(), "Created: 1")
			assert.Contains(t, out.String(), "Skipped: 1")
			assert.Contains(t, out.String(), "line 3")
		})

		t.Run("ImportToolsMissingFile", func(t *testing.T) {
			runner, _ := newTestRunner(testDB)
			assert.Error(t, run(runner, "import-tools", "-f", filepath.Join(t.TempDir(), "nope.tsv")))
		})

		t.Run("AnalyticsClearNeedsConfirmation", func(t *testing.T) {
			analytics := repository.NewAnalyticsRepository(testDB.DB)
			require.NoError(t, analytics.IncrementPageView(ctx, "/", utils.UTCNow()))

			runner, out := newTestRunner(testDB)
			err := run(runner, "analytics", "clear")
			assert.ErrorIs(t, err, errConfirmationRequired)

			require.NoError(t, run(runner, "analytics", "clear", "--yes"))
			assert.Contains(t, out.String(), "Deleted 1 page view rows")
		})

		t.Run("SendTestEmailDisabledProvider", func(t *testing.T) {
			runner, out := newTestRunner(testDB)
			require.NoError(t, run(runner, "send-test-email", "--to", "ops@aether.test"))
			assert.Contains(t, out.String(), "Delivered: false")
		})

		return nil
	})
	require.NoError(t, err)
}
