package adapters

import (
	"fmt"

	"github.com/otcheredev/barmaster-pos/internal/config"
	"github.com/otcheredev/barmaster-pos/internal/database"
)

// NewBackend creates the backend selected by configuration
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.Backend.Type {
	case config.BackendPostgres:
		db, err := database.Connect(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			LogLevel: cfg.Database.LogLevel,
			Migrate:  cfg.Database.Migrate,
		})
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(db), nil
	case config.BackendSupabase:
		return NewSupabaseBackend(SupabaseConfig{
			URL:        cfg.Supabase.URL,
			AnonKey:    cfg.Supabase.AnonKey,
			ServiceKey: cfg.Supabase.ServiceKey,
			Timeout:    cfg.Supabase.Timeout,
			Schema: SupabaseSchema{
				ProfilesTable:       cfg.Supabase.ProfilesTable,
				EstablishmentsTable: cfg.Supabase.EstablishmentsTable,
				SectorsTable:        cfg.Supabase.SectorsTable,
				TablesTable:         cfg.Supabase.TablesTable,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend.Type)
	}
}
