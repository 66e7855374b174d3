package consultation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// fileRepo stores each doctor's history as one JSON file under dir,
// mirroring the one-key-per-identity layout of the Postgres repository.
// Used when no database is configured.
type fileRepo struct {
	dir string
}

func NewFileRepository(dir string) HistoryRepository {
	return &fileRepo{dir: dir}
}

func (r *fileRepo) path(doctor string) string {
	// Doctor names are free text; escape them so they are safe as file names.
	return filepath.Join(r.dir, url.PathEscape(historyKey(doctor))+".json")
}

func (r *fileRepo) Load(ctx context.Context, doctor string) ([]Record, error) {
	data, err := os.ReadFile(r.path(doctor))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}

	records := []Record{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return records, nil
}

func (r *fileRepo) Save(ctx context.Context, doctor string, records []Record) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	// Write to a temp file and rename so a failed write never clobbers
	// the previously persisted list.
	tmp := r.path(doctor) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path(doctor))
}
