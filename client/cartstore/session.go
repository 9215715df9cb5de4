package cartstore

import (
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// NewForSession builds the cart store matching the current auth state:
// remote-backed when authenticated, file-backed guest storage otherwise.
// The guest path comes from config; empty means the platform default.
func NewForSession(cfg config.ClientConfig, api cartAPI, authenticated bool, logg *logger.Logger) (*Store, error) {
	if authenticated {
		return NewStore(NewRemoteBackend(api), logg), nil
	}
	local, err := NewLocalBackend(cfg.GuestCartPath)
	if err != nil {
		return nil, err
	}
	return NewStore(local, logg), nil
}
