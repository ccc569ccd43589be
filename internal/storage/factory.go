package storage

import (
	"fmt"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/config"
)

// NewStore opens the backend selected by STORAGE_BACKEND.
func NewStore(cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "memory":
		return NewMemoryStorage(logger), nil
	case "file":
		return NewFileStorage(cfg.FileObservations, cfg.FileUsers, logger)
	case "sqlite":
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresStorage(cfg.DBDSN, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}
