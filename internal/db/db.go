package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"career-advisor/internal/chat"
	"career-advisor/internal/config"
	"career-advisor/internal/models"
)

type ChatSession struct {
	bun.BaseModel `bun:"table:chat_sessions,alias:s"`
	ID            string     `bun:"id,pk"`
	StartedAt     time.Time  `bun:"started_at,notnull"`
	FinishedAt    time.Time  `bun:"finished_at,notnull"`
	Feedback      string     `bun:"feedback"`
	Turns         []ChatTurn `bun:"rel:has-many,join:id=session_id"`
}

type ChatTurn struct {
	bun.BaseModel `bun:"table:chat_turns,alias:t"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SessionID     string    `bun:"session_id,notnull"`
	Position      int       `bun:"position,notnull"`
	UserInput     string    `bun:"user_input,notnull"`
	BotResponse   string    `bun:"bot_response,notnull"`
	At            time.Time `bun:"at,notnull"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(dbConfig *config.DatabaseConfig) (*sql.DB, error) {
	if dbConfig.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(dbConfig.DSN)}
	if dbConfig.Password != "" {
		opts = append(opts, pgdriver.WithPassword(dbConfig.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*ChatSession)(nil), (*ChatTurn)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// TranscriptStore persists finished chat sessions.
type TranscriptStore struct {
	db *bun.DB
}

func NewTranscriptStore(db *bun.DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

// Open connects, creates the tables if needed and returns the store.
func Open(ctx context.Context, dbConfig *config.DatabaseConfig) (*TranscriptStore, error) {
	sqldb, err := ConnectDB(dbConfig)
	if err != nil {
		return nil, err
	}
	db := NewDB(sqldb, dbConfig.Debug)
	if err := InitDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewTranscriptStore(db), nil
}

// SaveTranscript writes the session row and its turns in one transaction.
func (s *TranscriptStore) SaveTranscript(ctx context.Context, t chat.Transcript) error {
	session, turns := toRows(t)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(session).Exec(ctx); err != nil {
			return err
		}
		if len(turns) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&turns).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save transcript %s: %w", t.SessionID, err)
	}
	log.Info().Str("session", t.SessionID).Int("turns", len(turns)).Msg("Saved chat transcript")
	return nil
}

// LoadTranscript reads a saved session back with its turns in order.
func (s *TranscriptStore) LoadTranscript(ctx context.Context, sessionID string) (chat.Transcript, error) {
	session := new(ChatSession)
	err := s.db.NewSelect().
		Model(session).
		Relation("Turns", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("s.id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		return chat.Transcript{}, fmt.Errorf("failed to load transcript %s: %w", sessionID, err)
	}
	return fromRows(session), nil
}

func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

func toRows(t chat.Transcript) (*ChatSession, []ChatTurn) {
	session := &ChatSession{
		ID:         t.SessionID,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Feedback:   t.Feedback,
	}
	turns := make([]ChatTurn, len(t.Turns))
	for i, turn := range t.Turns {
		turns[i] = ChatTurn{
			SessionID:   t.SessionID,
			Position:    i,
			UserInput:   turn.UserInput,
			BotResponse: turn.BotResponse,
			At:          turn.At,
		}
	}
	return session, turns
}

func fromRows(session *ChatSession) chat.Transcript {
	t := chat.Transcript{
		SessionID:  session.ID,
		StartedAt:  session.StartedAt,
		FinishedAt: session.FinishedAt,
		Feedback:   session.Feedback,
	}
	for _, turn := range session.Turns {
		t.Turns = append(t.Turns, models.ChatTurn{
			UserInput:   turn.UserInput,
			BotResponse: turn.BotResponse,
			At:          turn.At,
		})
	}
	return t
}
