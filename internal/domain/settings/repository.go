package settings

import "context"

// Repository loads and stores the settings document.
type Repository interface {
	// Load returns Defaults when nothing is stored. A corrupt document yields
	// Defaults together with ErrSettingsCorrupt.
	Load(ctx context.Context) (Settings, error)

	// Save overwrites the whole document.
	Save(ctx context.Context, s Settings) error
}
