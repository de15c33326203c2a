package embedding

import (
	"context"
	"errors"
	"testing"

	"career-advisor/internal/config"
	"career-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func TestGenerateEmbedding_Empty(t *testing.T) {
	e := &stubEmbedder{}
	vecs, err := GenerateEmbedding(context.Background(), e, nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Zero(t, e.calls)
}

func TestGenerateEmbedding_OneBatch(t *testing.T) {
	e := &stubEmbedder{vectors: [][]float32{{1, 0}, {0, 1}}}
	chunks := []models.Chunk{{Content: "a"}, {Content: "b"}}

	vecs, err := GenerateEmbedding(context.Background(), e, chunks)
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 1, e.calls)
}

func TestGenerateEmbedding_UpstreamErrors(t *testing.T) {
	boom := errors.New("connection refused")
	e := &stubEmbedder{err: boom}
	_, err := GenerateEmbedding(context.Background(), e, []models.Chunk{{Content: "a"}})
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, boom)

	e = &stubEmbedder{vectors: [][]float32{{1}}}
	_, err = GenerateEmbedding(context.Background(), e, []models.Chunk{{Content: "a"}, {Content: "b"}})
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)

	_, err = EmbedQuery(context.Background(), &stubEmbedder{err: boom}, "q")
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(&config.LLMConfig{Provider: "bedrock"})
	assert.Error(t, err)
}

func TestNewEmbedder_Ollama(t *testing.T) {
	e, err := NewEmbedder(&config.LLMConfig{Provider: "ollama", Model: "nomic-embed-text", BaseURL: "http://127.0.0.1:11434"})
	require.NoError(t, err)
	assert.NotNil(t, e)
}
