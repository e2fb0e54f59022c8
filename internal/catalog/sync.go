package catalog

import (
	"context"
	"time"

	"tickerize/internal/config"
	"tickerize/internal/storage"
)

// SyncService keeps the sqlite copy of the reference list up to date, either
// from a local CSV import or from the configured HTTP source.
type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// ImportCSV replaces the stored reference list with the contents of a local
// CSV file. Returns the number of usable entries imported.
func (s *SyncService) ImportCSV(path string) (int, error) {
	entries, err := LoadReferenceCSV(path, s.cfg.ReferenceNameColumn, s.cfg.ReferenceTickerColumn)
	if err != nil {
		return 0, err
	}
	if err := s.db.ReplaceReference(entries); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("reference.last_import", time.Now().UTC().Format(time.RFC3339))
	_ = s.db.SetMetadata("reference.source", path)
	return len(entries), nil
}

// SyncFromURL replaces the stored reference list with the published copy.
func (s *SyncService) SyncFromURL(ctx context.Context) (int, error) {
	entries, err := s.client.FetchReference(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.ReplaceReference(entries); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("reference.last_sync", time.Now().UTC().Format(time.RFC3339))
	_ = s.db.SetMetadata("reference.source", s.cfg.ReferenceURL)
	return len(entries), nil
}
