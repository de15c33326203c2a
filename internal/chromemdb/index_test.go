package chromemdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"career-advisor/internal/config"
	"career-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// letterEmbedder maps text to a letter histogram plus a bias dimension.
type letterEmbedder struct {
	docCalls   int
	queryCalls int
	err        error
}

func letterVector(text string) []float32 {
	v := make([]float32, 27)
	v[26] = 0.1
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (e *letterEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (e *letterEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.queryCalls++
	if e.err != nil {
		return nil, e.err
	}
	return letterVector(text), nil
}

func testChunks(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{Content: t, Source: "tips.txt", ChunkID: i + 1, Start: i * 10, End: i*10 + len(t)}
	}
	return chunks
}

func testOptions(t *testing.T, policy string) IndexOptions {
	return IndexOptions{
		Folder:          filepath.Join(t.TempDir(), "faiss_index_chatbot"),
		Name:            "index_0",
		FreshnessPolicy: policy,
		EmbeddingModel:  "letters",
	}
}

func TestBuildOrLoad_EmptyChunksFails(t *testing.T) {
	for _, policy := range []string{config.PolicyContentHash, config.PolicyPresence} {
		e := &letterEmbedder{}
		m, err := BuildOrLoad(context.Background(), testOptions(t, policy), nil, e)
		assert.Nil(t, m)
		assert.True(t, errors.Is(err, models.ErrIndexBuild), policy)
		assert.True(t, errors.Is(err, models.ErrNoChunks), policy)
		assert.Zero(t, e.docCalls)
	}
}

func TestBuildOrLoad_BuildsOnceThenLoads(t *testing.T) {
	for _, policy := range []string{config.PolicyContentHash, config.PolicyPresence} {
		t.Run(policy, func(t *testing.T) {
			opts := testOptions(t, policy)
			chunks := testChunks("research the company", "practice star answers", "ask thoughtful questions")
			e := &letterEmbedder{}

			first, err := BuildOrLoad(context.Background(), opts, chunks, e)
			require.NoError(t, err)
			assert.False(t, first.Loaded)
			assert.Equal(t, 3, first.Count())
			assert.Equal(t, 1, e.docCalls)

			second, err := BuildOrLoad(context.Background(), opts, chunks, e)
			require.NoError(t, err)
			assert.True(t, second.Loaded)
			assert.Equal(t, 3, second.Count())
			assert.Equal(t, 1, e.docCalls, "second call must not embed again")
		})
	}
}

func TestBuildOrLoad_ContentHashRebuildsOnChange(t *testing.T) {
	opts := testOptions(t, config.PolicyContentHash)
	e := &letterEmbedder{}

	_, err := BuildOrLoad(context.Background(), opts, testChunks("alpha", "beta"), e)
	require.NoError(t, err)

	m, err := BuildOrLoad(context.Background(), opts, testChunks("alpha", "beta", "gamma"), e)
	require.NoError(t, err)
	assert.False(t, m.Loaded)
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, 2, e.docCalls)

	man, err := ReadManifest(opts.Folder, opts.Name)
	require.NoError(t, err)
	assert.Equal(t, 3, man.ChunkCount)
	assert.Equal(t, ContentHash(testChunks("alpha", "beta", "gamma"), "letters"), man.ContentHash)
	assert.Equal(t, "letters", man.EmbeddingModel)
}

func TestBuildOrLoad_PresenceServesStaleIndex(t *testing.T) {
	opts := testOptions(t, config.PolicyPresence)
	e := &letterEmbedder{}

	_, err := BuildOrLoad(context.Background(), opts, testChunks("alpha", "beta"), e)
	require.NoError(t, err)

	m, err := BuildOrLoad(context.Background(), opts, testChunks("alpha", "beta", "gamma"), e)
	require.NoError(t, err)
	assert.True(t, m.Loaded)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, 1, e.docCalls)
}

func TestBuildOrLoad_PresenceMissingCollection(t *testing.T) {
	opts := testOptions(t, config.PolicyPresence)
	require.NoError(t, os.MkdirAll(opts.Folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(opts.Folder, "stray.txt"), []byte("x"), 0o644))

	_, err := BuildOrLoad(context.Background(), opts, testChunks("alpha"), &letterEmbedder{})
	assert.ErrorIs(t, err, models.ErrIndexBuild)
}

func TestBuildOrLoad_UpstreamFailure(t *testing.T) {
	e := &letterEmbedder{err: errors.New("timeout")}
	_, err := BuildOrLoad(context.Background(), testOptions(t, config.PolicyContentHash), testChunks("alpha"), e)
	assert.ErrorIs(t, err, models.ErrIndexBuild)
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

func TestBuildOrLoad_UnknownPolicy(t *testing.T) {
	_, err := BuildOrLoad(context.Background(), testOptions(t, "mtime"), testChunks("alpha"), &letterEmbedder{})
	assert.ErrorIs(t, err, models.ErrIndexBuild)
}

func TestContentHash(t *testing.T) {
	a := ContentHash(testChunks("alpha", "beta"), "m1")
	assert.Equal(t, a, ContentHash(testChunks("alpha", "beta"), "m1"))
	assert.NotEqual(t, a, ContentHash(testChunks("beta", "alpha"), "m1"))
	assert.NotEqual(t, a, ContentHash(testChunks("alpha", "beta"), "m2"))
}

func TestSearchMMR_RestoresChunks(t *testing.T) {
	opts := testOptions(t, config.PolicyContentHash)
	chunks := testChunks("zzz zzz", "yyy yyy", "interview interview", "xxx xxx")
	m, err := BuildOrLoad(context.Background(), opts, chunks, &letterEmbedder{})
	require.NoError(t, err)

	got, err := m.SearchMMR(context.Background(), "interview", 3, 20, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "interview interview", got[0].Content)
	assert.Equal(t, "tips.txt", got[0].Source)
	assert.Equal(t, 3, got[0].ChunkID)
	assert.Equal(t, 20, got[0].Start)

	got, err = m.SearchMMR(context.Background(), "interview", 10, 20, 0.5)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = m.SearchMMR(context.Background(), "interview", 0, 20, 0.5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExport(t *testing.T) {
	opts := testOptions(t, config.PolicyContentHash)
	m, err := BuildOrLoad(context.Background(), opts, testChunks("alpha", "beta"), &letterEmbedder{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "index.gob")
	path, err := m.Export(out)
	require.NoError(t, err)
	assert.Equal(t, out, path)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
