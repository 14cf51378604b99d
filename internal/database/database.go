// Package database handles PostgreSQL connections and queries.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard
// `database/sql` with convenient features like scanning rows into structs.
// You write raw SQL — no ORM. The one *sqlx.DB created at startup is shared
// by the whole application; it is safe for concurrent use and pools
// connections internally.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver — the underscore import runs its init()

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own.
type DB struct {
	*sqlx.DB
}

// New creates a new database connection with connection pooling configured.
func New(databaseURL string) (*DB, error) {
	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Conservative pool settings for serverless PostgreSQL, which closes
	// idle connections aggressively.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	return &DB{db}, nil
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// --- Transcript Operations ---

// CreateTranscript inserts a new transcript record. The ID is minted here
// rather than by the database so callers can reference it immediately.
func (db *DB) CreateTranscript(ctx context.Context, t *models.Transcript) error {
	t.ID = uuid.NewString()
	query := `
		INSERT INTO transcripts (id, youtube_url, youtube_id, title, channel_name, duration, language, transcript_text, segments, word_count, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return db.QueryRowContext(ctx, query,
		t.ID, t.YouTubeURL, t.YouTubeID, t.Title, t.ChannelName,
		t.Duration, t.Language, t.TranscriptText, nullableJSON(t.Segments),
		t.WordCount, t.Status, t.ErrorMessage,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetTranscript retrieves a single transcript by ID.
func (db *DB) GetTranscript(ctx context.Context, id string) (*models.Transcript, error) {
	var t models.Transcript
	// GetContext is sqlx's convenience method — it scans directly into a
	// struct using the `db:"column"` tags on the model.
	err := db.GetContext(ctx, &t, `SELECT * FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("transcript not found: %w", err)
	}
	return &t, nil
}

// GetTranscriptByYouTubeID checks if we already have a transcript for this
// video. Re-extraction attempts can leave several rows per video, so a
// completed one wins over newer pending or failed ones.
func (db *DB) GetTranscriptByYouTubeID(ctx context.Context, youtubeID string) (*models.Transcript, error) {
	var t models.Transcript
	err := db.GetContext(ctx, &t, `
		SELECT * FROM transcripts WHERE youtube_id = $1
		ORDER BY (status = 'completed') DESC, created_at DESC
		LIMIT 1`, youtubeID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTranscript updates a transcript's fields after processing.
func (db *DB) UpdateTranscript(ctx context.Context, t *models.Transcript) error {
	query := `
		UPDATE transcripts
		SET title = $2, channel_name = $3, duration = $4, language = $5,
			transcript_text = $6, segments = $7, word_count = $8, status = $9,
			error_message = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.ChannelName, t.Duration, t.Language,
		t.TranscriptText, nullableJSON(t.Segments), t.WordCount, t.Status, t.ErrorMessage,
	).Scan(&t.UpdatedAt)
}

// ListTranscripts returns a paginated list of transcripts with optional filters.
func (db *DB) ListTranscripts(ctx context.Context, params models.TranscriptListParams) ([]models.Transcript, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 20
	}
	if params.SortBy == "" {
		params.SortBy = "created_at"
	}
	if params.SortDir == "" {
		params.SortDir = "desc"
	}

	var conditions []string
	var args []interface{}
	argNum := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, params.Status)
		argNum++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR channel_name ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+params.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Validate sort column to prevent SQL injection
	validSortColumns := map[string]bool{
		"created_at": true, "title": true, "word_count": true, "duration": true,
	}
	if !validSortColumns[params.SortBy] {
		params.SortBy = "created_at"
	}
	if params.SortDir != "asc" && params.SortDir != "desc" {
		params.SortDir = "desc"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transcripts %s", whereClause)
	var total int
	err := db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			total = 0
		} else {
			return nil, 0, fmt.Errorf("count query failed: %w", err)
		}
	}

	offset := (params.Page - 1) * params.PerPage
	selectQuery := fmt.Sprintf(
		"SELECT * FROM transcripts %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		whereClause, params.SortBy, params.SortDir, argNum, argNum+1,
	)
	args = append(args, params.PerPage, offset)

	var transcripts []models.Transcript
	err = db.SelectContext(ctx, &transcripts, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list query failed: %w", err)
	}

	return transcripts, total, nil
}

// DeleteTranscript removes a transcript by ID.
func (db *DB) DeleteTranscript(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("transcript not found")
	}
	return nil
}

// --- Summary Cache Operations ---
// These implement the summarize.Store interface. Writes are last-writer-wins
// per cache key: a duplicate concurrent request for the same key produces a
// harmless duplicate write, never an error.

// GetCachedSummary returns the cached summary for a key, or (nil, nil) on a
// cache miss.
func (db *DB) GetCachedSummary(ctx context.Context, cacheKey string) (*models.SummaryCacheEntry, error) {
	var entry models.SummaryCacheEntry
	err := db.GetContext(ctx, &entry, `SELECT * FROM summary_cache WHERE cache_key = $1`, cacheKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("summary cache read failed: %w", err)
	}
	return &entry, nil
}

// PutCachedSummary upserts a summary under its cache key.
func (db *DB) PutCachedSummary(ctx context.Context, entry *models.SummaryCacheEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := `
		INSERT INTO summary_cache (id, cache_key, video_id, mode, start_time, end_time, tone, prompt_version, summary, fallback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (cache_key) DO UPDATE
		SET summary = EXCLUDED.summary, fallback = EXCLUDED.fallback, created_at = NOW()
		RETURNING created_at`

	if err := db.QueryRowContext(ctx, query,
		entry.ID, entry.CacheKey, entry.VideoID, entry.Mode,
		entry.StartTime, entry.EndTime, entry.Tone, entry.PromptVersion,
		[]byte(entry.Summary), entry.Fallback,
	).Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("summary cache write failed: %w", err)
	}
	return nil
}

// ListCachedSummaries returns all cached summary entries for a video,
// newest first — one per personalization parameter combination.
func (db *DB) ListCachedSummaries(ctx context.Context, videoID string) ([]models.SummaryCacheEntry, error) {
	var entries []models.SummaryCacheEntry
	err := db.SelectContext(ctx, &entries,
		`SELECT * FROM summary_cache WHERE video_id = $1 ORDER BY created_at DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached summaries: %w", err)
	}
	return entries, nil
}

// nullableJSON maps empty JSON payloads to NULL.
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
