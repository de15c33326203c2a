package models

import (
	"fmt"
	"time"
)

// Document is the raw text of one loaded file, or one page/sheet of it.
type Document struct {
	Source  string
	Content string
	Page    int
}

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	Source     string
	PageNumber int
	ChunkID    int
	Start      int
	End        int
}

// ID is the stable identifier of the chunk inside a vector collection.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s#%d-%d", c.Source, c.PageNumber, c.ChunkID)
}

// ChatTurn is one question/answer exchange.
type ChatTurn struct {
	UserInput   string    `json:"user_input"`
	BotResponse string    `json:"bot_response"`
	At          time.Time `json:"at"`
}

// Profile holds the upstream artifacts the advisor conditions every answer on.
type Profile struct {
	Resume            string
	PersonalWriteup   string
	JobQualifications string
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
