package parser

import (
	"strings"

	"career-advisor/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	defaultChunkSize    = 1024 // runes
	defaultChunkOverlap = 16   // runes
)

// DefaultSeparators are tried in order: paragraph, line, sentence, word.
// When none fits, the text is cut at the chunk size.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts documents into overlapping chunks of at most ChunkSize runes.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewSplitter returns a splitter with the default separators. A non-positive size
// or a negative overlap falls back to the default; zero overlap is kept; an overlap that would stall progress is halved.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = defaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}
}

type span struct {
	start, end int
}

// SplitText returns the chunk texts of a single string.
func (s *Splitter) SplitText(content string) []string {
	runes := []rune(content)
	var out []string
	for _, sp := range s.spans(runes) {
		out = append(out, string(runes[sp.start:sp.end]))
	}
	return out
}

// SplitDocuments chunks every document, keeping document order.
func (s *Splitter) SplitDocuments(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		runes := []rune(doc.Content)
		for i, sp := range s.spans(runes) {
			chunks = append(chunks, models.Chunk{
				Content:    string(runes[sp.start:sp.end]),
				Source:     doc.Source,
				PageNumber: doc.Page,
				ChunkID:    i + 1,
				Start:      sp.start,
				End:        sp.end,
			})
		}
	}
	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Total number of split chunks")
	return chunks
}

func (s *Splitter) spans(runes []rune) []span {
	if strings.TrimSpace(string(runes)) == "" {
		return nil
	}
	n := len(runes)
	if n <= s.ChunkSize {
		return []span{{0, n}}
	}

	var out []span
	start := 0
	for {
		limit := start + s.ChunkSize
		if limit >= n {
			return append(out, span{start, n})
		}
		end := s.splitPoint(runes, start, limit)
		out = append(out, span{start, end})
		start = end - s.ChunkOverlap
	}
}

// splitPoint picks the cut in (start+overlap, limit], preferring the last
// occurrence of the earliest separator. The separator stays in the left chunk.
func (s *Splitter) splitPoint(runes []rune, start, limit int) int {
	lowest := start + s.ChunkOverlap + 1
	for _, sep := range s.Separators {
		sr := []rune(sep)
		if len(sr) == 0 {
			continue
		}
		for i := limit - len(sr); i >= start && i+len(sr) >= lowest; i-- {
			if hasRunesAt(runes, i, sr) {
				return i + len(sr)
			}
		}
	}
	return limit
}

func hasRunesAt(runes []rune, i int, sep []rune) bool {
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

// MergeChunks rebuilds the text of one document from its consecutive chunks by
// dropping the overlapping prefix of every chunk after the first.
func MergeChunks(chunks []models.Chunk, overlapCharLen int) string {
	var content strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk.Content)
		if i > 0 && len(runes) > overlapCharLen {
			runes = runes[overlapCharLen:]
		}
		content.WriteString(string(runes))
	}
	return content.String()
}
