package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryRepository persists the full history of one doctor under a key
// derived from the doctor's name. The whole list is written back on
// every mutation; there is no incremental diffing.
type HistoryRepository interface {
	Load(ctx context.Context, doctor string) ([]Record, error)
	Save(ctx context.Context, doctor string, records []Record) error
}

// historyKey derives the storage namespace key for a doctor. The name is
// used as-is: it is an unchecked display name, not a verified identity.
func historyKey(doctor string) string {
	return "history_" + doctor
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) HistoryRepository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Load(ctx context.Context, doctor string) ([]Record, error) {
	query := `SELECT records FROM consultation_histories WHERE key = $1`

	var recordsJSON []byte
	err := r.db.QueryRowContext(ctx, query, historyKey(doctor)).Scan(&recordsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			// New doctor, empty history.
			return []Record{}, nil
		}
		return nil, err
	}

	records := []Record{}
	if len(recordsJSON) > 0 {
		if err := json.Unmarshal(recordsJSON, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history: %w", err)
		}
	}
	return records, nil
}

func (r *postgresRepo) Save(ctx context.Context, doctor string, records []Record) error {
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO consultation_histories (key, records, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			records = $2,
			updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, historyKey(doctor), recordsJSON, time.Now())
	return err
}
