package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/models"
)

type PostgresDB struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

func NewPostgresDB(cfg *config.PostgresConfig) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Build connection string
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create sql.DB for compatibility
	connConfig, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)

	pgdb := &PostgresDB{
		pool: pool,
		db:   db,
	}

	// Create tables if they don't exist
	if err := pgdb.createTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pgdb, nil
}

func (p *PostgresDB) createTables(ctx context.Context) error {
	// Create custom type for transcript status
	createTypeQuery := `
		DO $$ BEGIN
			CREATE TYPE transcript_status AS ENUM ('pending', 'processing', 'enhancing', 'completed', 'failed');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`

	if _, err := p.pool.Exec(ctx, createTypeQuery); err != nil {
		return fmt.Errorf("failed to create transcript_status type: %w", err)
	}

	// Create transcripts table
	createTranscriptsTable := `
		CREATE TABLE IF NOT EXISTS transcripts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			video_id VARCHAR(32) UNIQUE NOT NULL,
			source_url VARCHAR(500) NOT NULL,
			title VARCHAR(500) NOT NULL DEFAULT '',
			channel VARCHAR(255) NOT NULL DEFAULT '',
			upload_date VARCHAR(10) NOT NULL DEFAULT '',
			duration_seconds INTEGER,
			transcript TEXT NOT NULL DEFAULT '',
			extraction_method VARCHAR(50) NOT NULL DEFAULT '',
			enhanced BOOLEAN NOT NULL DEFAULT FALSE,
			s3_key VARCHAR(500) NOT NULL DEFAULT '',
			status transcript_status DEFAULT 'pending',
			error_message TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_video_id ON transcripts(video_id);
		CREATE INDEX IF NOT EXISTS idx_transcripts_status ON transcripts(status);
		CREATE INDEX IF NOT EXISTS idx_transcripts_channel ON transcripts(channel);
		CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts(created_at DESC);
	`

	if _, err := p.pool.Exec(ctx, createTranscriptsTable); err != nil {
		return fmt.Errorf("failed to create transcripts table: %w", err)
	}

	// Run migrations for existing databases
	if err := p.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create update trigger for updated_at
	createTrigger := `
		CREATE OR REPLACE FUNCTION update_updated_at_column()
		RETURNS TRIGGER AS $$
		BEGIN
			NEW.updated_at = CURRENT_TIMESTAMP;
			RETURN NEW;
		END;
		$$ language 'plpgsql';

		DROP TRIGGER IF EXISTS update_transcripts_updated_at ON transcripts;
		CREATE TRIGGER update_transcripts_updated_at BEFORE UPDATE ON transcripts
			FOR EACH ROW EXECUTE FUNCTION update_updated_at_column();
	`

	if _, err := p.pool.Exec(ctx, createTrigger); err != nil {
		return fmt.Errorf("failed to create update trigger: %w", err)
	}

	return nil
}

// runMigrations handles database schema migrations
func (p *PostgresDB) runMigrations(ctx context.Context) error {
	// Migration 1: Add enhanced column to transcripts table if it doesn't exist
	addEnhanced := `
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM information_schema.columns
						   WHERE table_name = 'transcripts' AND column_name = 'enhanced') THEN
				ALTER TABLE transcripts ADD COLUMN enhanced BOOLEAN;
				UPDATE transcripts SET enhanced = FALSE WHERE enhanced IS NULL;
				ALTER TABLE transcripts ALTER COLUMN enhanced SET NOT NULL;
				ALTER TABLE transcripts ALTER COLUMN enhanced SET DEFAULT FALSE;
			END IF;
		END $$;
	`

	if _, err := p.pool.Exec(ctx, addEnhanced); err != nil {
		return fmt.Errorf("failed to add enhanced column: %w", err)
	}

	// Migration 2: Add 'enhancing' to transcript_status for databases created
	// before enhancement existed
	addEnhancingStatus := `
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_enum e
						   JOIN pg_type t ON e.enumtypid = t.oid
						   WHERE t.typname = 'transcript_status' AND e.enumlabel = 'enhancing') THEN
				ALTER TYPE transcript_status ADD VALUE 'enhancing' BEFORE 'completed';
			END IF;
		END $$;
	`

	if _, err := p.pool.Exec(ctx, addEnhancingStatus); err != nil {
		return fmt.Errorf("failed to add enhancing status: %w", err)
	}

	// Migration 3: Add extraction_method column if it doesn't exist
	addExtractionMethod := `
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM information_schema.columns
						   WHERE table_name = 'transcripts' AND column_name = 'extraction_method') THEN
				ALTER TABLE transcripts ADD COLUMN extraction_method VARCHAR(50);
				UPDATE transcripts SET extraction_method = '' WHERE extraction_method IS NULL;
				ALTER TABLE transcripts ALTER COLUMN extraction_method SET NOT NULL;
				ALTER TABLE transcripts ALTER COLUMN extraction_method SET DEFAULT '';
			END IF;
		END $$;
	`

	if _, err := p.pool.Exec(ctx, addExtractionMethod); err != nil {
		return fmt.Errorf("failed to add extraction_method column: %w", err)
	}

	return nil
}

// Transcript operations
func (p *PostgresDB) CreateTranscript(ctx context.Context, transcript *models.Transcript) error {
	transcript.ID = uuid.New()
	transcript.CreatedAt = time.Now()
	transcript.UpdatedAt = time.Now()

	query := `
		INSERT INTO transcripts (id, video_id, source_url, title, channel, upload_date,
			duration_seconds, transcript, extraction_method, enhanced, s3_key, status,
			error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err := p.pool.QueryRow(ctx, query,
		transcript.ID, transcript.VideoID, transcript.SourceURL, transcript.Title,
		transcript.Channel, transcript.UploadDate, transcript.DurationSeconds,
		transcript.Transcript, transcript.ExtractionMethod, transcript.Enhanced,
		transcript.S3Key, transcript.Status, transcript.ErrorMessage,
		transcript.CreatedAt, transcript.UpdatedAt,
	).Scan(&transcript.ID, &transcript.CreatedAt, &transcript.UpdatedAt)

	return err
}

func (p *PostgresDB) GetTranscriptByVideoID(ctx context.Context, videoID string) (*models.Transcript, error) {
	transcript := &models.Transcript{}
	query := `
		SELECT id, video_id, source_url, title, channel, upload_date, duration_seconds,
			transcript, extraction_method, enhanced, s3_key, status, error_message,
			created_at, updated_at
		FROM transcripts WHERE video_id = $1`

	err := p.pool.QueryRow(ctx, query, videoID).Scan(
		&transcript.ID, &transcript.VideoID, &transcript.SourceURL, &transcript.Title,
		&transcript.Channel, &transcript.UploadDate, &transcript.DurationSeconds,
		&transcript.Transcript, &transcript.ExtractionMethod, &transcript.Enhanced,
		&transcript.S3Key, &transcript.Status, &transcript.ErrorMessage,
		&transcript.CreatedAt, &transcript.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

func (p *PostgresDB) UpdateTranscript(ctx context.Context, transcript *models.Transcript) error {
	query := `
		UPDATE transcripts SET
			source_url = $2, title = $3, channel = $4, upload_date = $5,
			duration_seconds = $6, transcript = $7, extraction_method = $8,
			enhanced = $9, s3_key = $10, status = $11, error_message = $12
		WHERE video_id = $1`

	_, err := p.pool.Exec(ctx, query,
		transcript.VideoID, transcript.SourceURL, transcript.Title, transcript.Channel,
		transcript.UploadDate, transcript.DurationSeconds, transcript.Transcript,
		transcript.ExtractionMethod, transcript.Enhanced, transcript.S3Key,
		transcript.Status, transcript.ErrorMessage,
	)
	return err
}

func (p *PostgresDB) UpdateTranscriptStatus(ctx context.Context, videoID string, status models.TranscriptStatus, errorMessage *string) error {
	query := `UPDATE transcripts SET status = $2, error_message = $3 WHERE video_id = $1`

	_, err := p.pool.Exec(ctx, query, videoID, status, errorMessage)
	return err
}

func (p *PostgresDB) ListTranscripts(ctx context.Context, opts models.TranscriptListOptions) ([]models.Transcript, int, error) {
	// Set defaults
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	offset := (opts.Page - 1) * opts.Limit

	args := make([]interface{}, 0, 3)
	where := ""
	if opts.Status != "" {
		args = append(args, opts.Status)
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}

	// Count total
	var total int
	countQuery := `SELECT COUNT(*) FROM transcripts` + where
	if err := p.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Get transcripts
	args = append(args, opts.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, video_id, source_url, title, channel, upload_date, duration_seconds,
			transcript, extraction_method, enhanced, s3_key, status, error_message,
			created_at, updated_at
		FROM transcripts%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transcripts []models.Transcript
	for rows.Next() {
		var transcript models.Transcript
		err := rows.Scan(
			&transcript.ID, &transcript.VideoID, &transcript.SourceURL, &transcript.Title,
			&transcript.Channel, &transcript.UploadDate, &transcript.DurationSeconds,
			&transcript.Transcript, &transcript.ExtractionMethod, &transcript.Enhanced,
			&transcript.S3Key, &transcript.Status, &transcript.ErrorMessage,
			&transcript.CreatedAt, &transcript.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		transcripts = append(transcripts, transcript)
	}

	return transcripts, total, nil
}

func (p *PostgresDB) DeleteTranscript(ctx context.Context, videoID string) error {
	query := `DELETE FROM transcripts WHERE video_id = $1`

	result, err := p.pool.Exec(ctx, query, videoID)
	if err != nil {
		return err
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("no transcript found for video: %s", videoID)
	}

	return nil
}

// Transaction support
func (p *PostgresDB) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Health check
func (p *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close connection
func (p *PostgresDB) Close() {
	p.pool.Close()
	p.db.Close()
}
