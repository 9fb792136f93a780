package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event EventRecord) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, timestamp, event_type, tick, subject, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.Tick,
		event.Subject, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var e EventRecord
		var payloadStr string
		err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.Tick, &e.Subject, &payloadStr)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

func (r *SQLiteEventRepository) GetAll(ctx context.Context) ([]EventRecord, error) {
	query := `SELECT id, timestamp, event_type, tick, subject, payload FROM events ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType string) ([]EventRecord, error) {
	query := `SELECT id, timestamp, event_type, tick, subject, payload FROM events WHERE event_type = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, eventType)
}

func (r *SQLiteEventRepository) GetSinceTick(ctx context.Context, tick uint64) ([]EventRecord, error) {
	query := `SELECT id, timestamp, event_type, tick, subject, payload FROM events WHERE tick >= ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, tick)
}

func (r *SQLiteEventRepository) Tail(ctx context.Context, n int) ([]EventRecord, error) {
	query := `SELECT id, timestamp, event_type, tick, subject, payload FROM (
		SELECT id, timestamp, event_type, tick, subject, payload FROM events ORDER BY tick DESC, timestamp DESC LIMIT ?
	) ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, n)
}

// ---------------------------------------------------------
// SQLiteSaveRepository
// ---------------------------------------------------------

type SQLiteSaveRepository struct {
	db *sql.DB
}

func NewSQLiteSaveRepository(db *sql.DB) *SQLiteSaveRepository {
	return &SQLiteSaveRepository{db: db}
}

func (r *SQLiteSaveRepository) Put(ctx context.Context, record SaveRecord) error {
	query := `
		INSERT INTO saves (slot, version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			version=excluded.version,
			data=excluded.data,
			updated_at=excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Slot, record.Version, string(record.Data), record.UpdatedAt,
	)
	return err
}

func (r *SQLiteSaveRepository) Get(ctx context.Context, slot string) (*SaveRecord, error) {
	query := `SELECT slot, version, data, updated_at FROM saves WHERE slot = ?`
	var rec SaveRecord
	var data string
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&rec.Slot, &rec.Version, &data, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.Data = []byte(data)
	return &rec, nil
}
