package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zero-day-ai/text2cypher/internal/types"
)

// SqliteStore is a persistent Store on SQLite. Similarity is computed in Go
// over the rows that pass the metadata filters.
type SqliteStore struct {
	mu        sync.RWMutex
	db        *sql.DB
	tableName string
	closed    bool
}

// SqliteConfig holds configuration for SqliteStore.
type SqliteConfig struct {
	// DBPath is the database file; ":memory:" keeps it in process.
	DBPath    string
	TableName string
}

// NewSqliteStore opens (creating if needed) the database and table.
func NewSqliteStore(cfg SqliteConfig) (*SqliteStore, error) {
	if cfg.DBPath == "" {
		return nil, types.NewError(ErrCodeInvalidConfig, "database path cannot be empty")
	}
	if cfg.TableName == "" {
		cfg.TableName = "vectors"
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", cfg.DBPath)
	if cfg.DBPath == ":memory:" {
		dsn = ":memory:"
	} else if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, types.WrapError(ErrCodeVectorStoreFailed, "failed to create storage directory", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(ErrCodeVectorStoreFailed, "failed to open database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, types.WrapError(ErrCodeVectorStoreFailed, "failed to ping database", err)
	}

	store := &SqliteStore{db: db, tableName: cfg.TableName}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, types.WrapError(ErrCodeVectorStoreFailed, "failed to initialize schema", err)
	}

	return store, nil
}

func (s *SqliteStore) initSchema() error {
	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, s.tableName))
	return err
}

// Put inserts record with INSERT OR IGNORE.
func (s *SqliteStore) Put(ctx context.Context, record Record) (bool, error) {
	if err := record.Validate(); err != nil {
		return false, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return false, types.WrapError(ErrCodeVectorStoreFailed, "failed to serialize metadata", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, types.NewError(ErrCodeVectorStoreUnavailable, "vector store is closed")
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT OR IGNORE INTO %s (id, content, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.tableName),
		record.ID,
		record.Content,
		serializeEmbedding(record.Embedding),
		string(metadataJSON),
		record.CreatedAt,
	)
	if err != nil {
		return false, types.WrapError(ErrCodeVectorStoreFailed, "failed to insert record", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, types.WrapError(ErrCodeVectorStoreFailed, "failed to read insert result", err)
	}
	return n > 0, nil
}

// Search loads rows in insertion order and ranks them.
func (s *SqliteStore) Search(ctx context.Context, query Query) ([]Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	records, err := s.scan(ctx)
	if err != nil {
		return nil, types.WrapError(ErrCodeVectorSearchFailed, "failed to load vectors", err)
	}
	return rank(query, records), nil
}

// Get retrieves a record by ID.
func (s *SqliteStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(ErrCodeVectorStoreUnavailable, "vector store is closed")
	}

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT id, content, embedding, metadata, created_at FROM %s WHERE id = ?", s.tableName), id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(ErrCodeVectorNotFound, fmt.Sprintf("vector record not found: %s", id))
	}
	if err != nil {
		return nil, types.WrapError(ErrCodeVectorSearchFailed, "failed to get record", err)
	}
	return &record, nil
}

// Count returns the number of records matching filters.
func (s *SqliteStore) Count(ctx context.Context, filters map[string]any) (int, error) {
	records, err := s.scan(ctx)
	if err != nil {
		return 0, types.WrapError(ErrCodeVectorSearchFailed, "failed to count records", err)
	}

	n := 0
	for _, rec := range records {
		if matchesFilters(rec, filters) {
			n++
		}
	}
	return n, nil
}

func (s *SqliteStore) scan(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(ErrCodeVectorStoreUnavailable, "vector store is closed")
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, content, embedding, metadata, created_at FROM %s ORDER BY rowid", s.tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec          Record
		embedding    []byte
		metadataJSON sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Content, &embedding, &metadataJSON, &rec.CreatedAt); err != nil {
		return Record{}, err
	}

	vec, err := deserializeEmbedding(embedding)
	if err != nil {
		return Record{}, err
	}
	rec.Embedding = vec

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
			return Record{}, fmt.Errorf("decode metadata for %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// Health pings the database and counts records.
func (s *SqliteStore) Health(ctx context.Context) types.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.Unhealthy("sqlite vector store is closed")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return types.Unhealthy(fmt.Sprintf("database ping failed: %v", err))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableName)).Scan(&count); err != nil {
		return types.Degraded(fmt.Sprintf("failed to count records: %v", err))
	}

	return types.Healthy(fmt.Sprintf("sqlite vector store operational with %d records", count))
}

// Close releases the database handle.
func (s *SqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// serializeEmbedding packs float64 values little-endian, 8 bytes each.
func serializeEmbedding(embedding []float64) []byte {
	buf := make([]byte, len(embedding)*8)
	for i, v := range embedding {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func deserializeEmbedding(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 8", len(data))
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out, nil
}

var (
	_ Store = (*SqliteStore)(nil)
	_ Store = (*EmbeddedStore)(nil)
)
