package models

// All returns every persisted entity in dependency order for migrations.
func All() []any {
	return []any{
		&User{},
		&Tool{},
		&ToolTag{},
		&WaitlistEntry{},
		&ContactForm{},
		&Analytics{},
		&AnalyticsEvent{},
		&TerminalChat{},
	}
}
