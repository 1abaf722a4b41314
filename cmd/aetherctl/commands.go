package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/services"
	businessflow "github.com/aetherinc/aether-waitlist/business_flow"
	"github.com/aetherinc/aether-waitlist/repository"
)

var errConfirmationRequired = errors.New("refusing to clear analytics without --yes")

// Migrate brings the schema up to date.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.database(); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	r.writePlainln("✓ Schema is up to date (%s)", r.config.Database.Driver)
	return nil
}

// CreateAdmin creates a dashboard admin or resets an existing account's password.
func (r *Runner) CreateAdmin(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	user, created, err := businessflow.EnsureAdminUser(ctx,
		repository.NewUserRepository(db),
		cmd.String("email"),
		cmd.String("username"),
		cmd.String("password"),
		r.config.Security.BcryptCost,
	)
	if err != nil {
		return err
	}

	if created {
		r.logger.Info("admin created", "id", user.ID, "email", user.Email)
		r.writePlainln("✓ Created admin %s", user.Email)
	} else {
		r.logger.Info("admin updated", "id", user.ID, "email", user.Email)
		r.writePlainln("✓ Updated password and role for %s", user.Email)
	}
	return nil
}

// ImportTools upserts tools from a tab-separated file.
func (r *Runner) ImportTools(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	flow, err := r.toolFlow()
	if err != nil {
		return err
	}

	result, err := flow.Import(ctx, f)
	if err != nil {
		return err
	}
	r.printImportResult(result)
	return nil
}

// SeedTools loads the built-in starter catalog.
func (r *Runner) SeedTools(ctx context.Context, cmd *cli.Command) error {
	flow, err := r.toolFlow()
	if err != nil {
		return err
	}

	result, err := flow.Upsert(ctx, businessflow.StarterCatalog())
	if err != nil {
		return err
	}
	r.printImportResult(result)
	return nil
}

// SendTestEmail sends one message through the configured provider.
func (r *Runner) SendTestEmail(ctx context.Context, cmd *cli.Command) error {
	mailer := services.NewEmailServiceFromConfig(r.config.Email)
	to := cmd.String("to")

	r.logger.Info("sending test email", "provider", mailer.Provider(), "to", to)
	result, err := mailer.Send(ctx, services.EmailMessage{
		To:      []string{to},
		Subject: "AetherInc test email",
		Text:    "This is a test message from aetherctl. If you can read it, email delivery works.",
	})
	if err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}

	r.writePlainln("Provider:  %s", result.Provider)
	r.writePlainln("Delivered: %t", result.Delivered)
	if result.MessageID != "" {
		r.writePlainln("MessageID: %s", result.MessageID)
	}
	return nil
}

// ClearAnalytics deletes every page view and click event row.
func (r *Runner) ClearAnalytics(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return errConfirmationRequired
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	result, err := businessflow.NewAnalyticsFlow(repository.NewAnalyticsRepository(db)).Clear(ctx)
	if err != nil {
		return err
	}
	r.writePlainln("✓ Deleted %d page view rows and %d event rows", result.PageViewsDeleted, result.EventsDeleted)
	return nil
}

func (r *Runner) toolFlow() (businessflow.ToolFlow, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return businessflow.NewToolFlow(repository.NewToolRepository(db), db), nil
}

func (r *Runner) printImportResult(result *dto.ToolImportResult) {
	r.writePlainln("Created: %d", result.Created)
	r.writePlainln("Updated: %d", result.Updated)
	r.writePlainln("Skipped: %d", result.Skipped)
	for _, e := range result.Errors {
		r.writePlainln("  line %d: %s", e.Line, e.Message)
	}
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Create or update database tables",
		Action: r.Migrate,
	}
}

func createAdminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create a dashboard admin, or reset the password of an existing one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Admin email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Admin password (min 8 characters)", Required: true},
			&cli.StringFlag{Name: "username", Usage: "Optional username for sign-in"},
		},
		Action: r.CreateAdmin,
	}
}

func importToolsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import-tools",
		Usage: "Upsert tools from a tab-separated file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the TSV file",
				Required: true,
			},
		},
		Action: r.ImportTools,
	}
}

func seedToolsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "seed-tools",
		Usage:  "Load the built-in starter tool catalog",
		Action: r.SeedTools,
	}
}

func sendTestEmailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "send-test-email",
		Usage: "Send a test message through the configured email provider",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Recipient", Required: true},
		},
		Action: r.SendTestEmail,
	}
}

func analyticsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "Manage analytics counters",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Delete all page view and click event rows",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Confirm the deletion"},
				},
				Action: r.ClearAnalytics,
			},
		},
	}
}
