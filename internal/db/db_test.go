package db

import (
	"testing"
	"time"

	"career-advisor/internal/chat"
	"career-advisor/internal/config"
	"career-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func sampleTranscript() chat.Transcript {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return chat.Transcript{
		SessionID:  "6f1c",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Feedback:   "useful",
		Turns: []models.ChatTurn{
			{UserInput: "q1", BotResponse: "a1", At: start.Add(10 * time.Second)},
			{UserInput: "q2", BotResponse: "a2", At: start.Add(20 * time.Second)},
		},
	}
}

func TestRowsRoundTrip(t *testing.T) {
	tr := sampleTranscript()
	session, turns := toRows(tr)

	assert.Equal(t, "6f1c", session.ID)
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[1].Position)
	assert.Equal(t, "6f1c", turns[1].SessionID)

	session.Turns = turns
	assert.Equal(t, tr, fromRows(session))
}

func TestConnectDB_RequiresDSN(t *testing.T) {
	_, err := ConnectDB(&config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestCreateTableQuery(t *testing.T) {
	sqldb, err := ConnectDB(&config.DatabaseConfig{DSN: "postgres://user@localhost:5432/advisor?sslmode=disable"})
	require.NoError(t, err)
	db := NewDB(sqldb, false)
	defer db.Close()

	query := db.NewCreateTable().Model((*ChatTurn)(nil)).IfNotExists().String()
	assert.Contains(t, query, `CREATE TABLE IF NOT EXISTS "chat_turns"`)
	assert.Contains(t, query, `"bot_response"`)
	assert.Equal(t, pgdialect.New().Name(), db.Dialect().Name())
}
