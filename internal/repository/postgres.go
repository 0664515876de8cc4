package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chatbot/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveExchange persists one resolved exchange and bumps the per-user
// interaction counters and intent summary in the same transaction. The
// message's feature vector, when present, is stored for later similarity
// lookups.
func (r *PostgresRepository) SaveExchange(ctx context.Context, ex *model.Exchange) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	sessionID := ex.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s_%s_%s", ex.UserID, ex.Channel, time.Now().Format("20060102"))
	}

	var vec interface{}
	if len(ex.MessageVector) > 0 {
		vec = pgvector.NewVector(ex.MessageVector)
	}

	insertQuery := `
		INSERT INTO conversations (user_id, channel, message, response, intent, confidence, session_id, message_vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		ex.UserID, ex.Channel, ex.Message, ex.Response, ex.Intent, ex.Confidence, sessionID, vec,
	); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	reportQuery := `
		INSERT INTO chat_reports (user_id, channel, message_count, last_interaction, intent_summary)
		VALUES ($1, $2, 1, NOW(), jsonb_build_object($3::text, 1))
		ON CONFLICT (user_id, channel) DO UPDATE SET
			message_count = chat_reports.message_count + 1,
			last_interaction = NOW(),
			intent_summary = jsonb_set(
				COALESCE(chat_reports.intent_summary, '{}'::jsonb),
				ARRAY[$3::text],
				(COALESCE(chat_reports.intent_summary->>$3, '0')::int + 1)::text::jsonb
			)
	`
	if _, err := tx.ExecContext(ctx, reportQuery, ex.UserID, ex.Channel, ex.Intent); err != nil {
		return fmt.Errorf("failed to update chat report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecentExchanges returns the latest exchanges for a (user, channel) pair,
// newest first
func (r *PostgresRepository) RecentExchanges(ctx context.Context, userID, channel string, limit int) ([]model.Exchange, error) {
	query := `
		SELECT id, user_id, channel, message, response, intent, confidence, session_id, created_at
		FROM conversations
		WHERE user_id = $1 AND channel = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	var exchanges []model.Exchange
	if err := r.db.SelectContext(ctx, &exchanges, query, userID, channel, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent exchanges: %w", err)
	}
	return exchanges, nil
}

// ListConversations returns a page of conversations, newest first, plus the
// total count
func (r *PostgresRepository) ListConversations(ctx context.Context, page, perPage int) ([]model.Exchange, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM conversations`); err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	query := `
		SELECT id, user_id, channel, message, response, intent, confidence, session_id, created_at
		FROM conversations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var exchanges []model.Exchange
	if err := r.db.SelectContext(ctx, &exchanges, query, perPage, (page-1)*perPage); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return exchanges, total, nil
}

// GetStats aggregates dashboard statistics
func (r *PostgresRepository) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	stats := &model.StatsResponse{TopIntents: map[string]int{}}

	if err := r.db.GetContext(ctx, &stats.TotalConversations, `SELECT COUNT(*) FROM conversations`); err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalUsers, `SELECT COUNT(DISTINCT user_id) FROM conversations`); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.ConversationsToday,
		`SELECT COUNT(*) FROM conversations WHERE created_at >= date_trunc('day', NOW())`); err != nil {
		return nil, fmt.Errorf("failed to count today's conversations: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT intent, COUNT(*) AS n
		FROM conversations
		WHERE intent IS NOT NULL AND intent <> ''
		GROUP BY intent
		ORDER BY n DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top intents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, fmt.Errorf("failed to scan intent row: %w", err)
		}
		stats.TopIntents[intent] = n
	}
	return stats, rows.Err()
}

// GetChatReport returns the interaction counters for a (user, channel) pair,
// or nil when none exist yet
func (r *PostgresRepository) GetChatReport(ctx context.Context, userID, channel string) (*model.ChatReport, error) {
	query := `
		SELECT id, user_id, channel, message_count, last_interaction, intent_summary
		FROM chat_reports
		WHERE user_id = $1 AND channel = $2
	`
	row := r.db.QueryRowxContext(ctx, query, userID, channel)

	var report model.ChatReport
	var summary []byte
	if err := row.Scan(&report.ID, &report.UserID, &report.Channel,
		&report.MessageCount, &report.LastInteraction, &summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat report: %w", err)
	}

	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &report.IntentSummary); err != nil {
			return nil, fmt.Errorf("failed to decode intent summary: %w", err)
		}
	}
	return &report, nil
}

// SimilarExchanges finds past exchanges whose stored message vectors are
// closest to the given one by cosine distance
func (r *PostgresRepository) SimilarExchanges(ctx context.Context, vector []float32, limit int) ([]model.Exchange, error) {
	query := `
		SELECT id, user_id, channel, message, response, intent, confidence, session_id, created_at
		FROM conversations
		WHERE message_vector IS NOT NULL
		ORDER BY message_vector <=> $1
		LIMIT $2
	`
	var exchanges []model.Exchange
	if err := r.db.SelectContext(ctx, &exchanges, query, pgvector.NewVector(vector), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar exchanges: %w", err)
	}
	return exchanges, nil
}
