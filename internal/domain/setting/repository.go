package setting

import "context"

// Repository defines key/value setting persistence.
type Repository interface {
	// Get resolves a setting, returning def when the key is absent. Get
	// never fails: storage errors are logged and the default is returned.
	Get(ctx context.Context, key, def string) string

	// Set upserts a setting value.
	Set(ctx context.Context, key, value string) error
}
