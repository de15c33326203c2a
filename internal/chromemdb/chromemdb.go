package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"career-advisor/internal/embedding"
	"career-advisor/internal/models"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embedder      embedding.Embedder
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string

	// Loaded is true when the collection came from disk instead of a fresh build.
	Loaded bool
}

const (
	compress = false
)

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool, encryptionKey string, embedder embedding.Embedder) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	return &VectorDBManager{
		db:            db,
		embedder:      embedder,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}, nil
}

func (m *VectorDBManager) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedding.EmbedQuery(ctx, m.embedder, text)
	}
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, m.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// GetCollection selects an existing collection; it reports false when there is none.
func (m *VectorDBManager) GetCollection(collectionName string) bool {
	c := m.db.GetCollection(collectionName, m.embeddingFunc())
	if c == nil {
		return false
	}
	m.collection = c
	return true
}

// add multiple documents
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []chromem.Document) error {
	err := m.collection.AddDocuments(ctx, documents, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the selected collection.
func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// SearchWithQueryOptions performs a similarity search on the selected collection.
func (m *VectorDBManager) SearchWithQueryOptions(ctx context.Context, opts chromem.QueryOptions) ([]chromem.Result, error) {
	// exit if query or embedding is not provided
	if opts.QueryText == "" && opts.QueryEmbedding == nil {
		return nil, fmt.Errorf("either query or embedding must be provided")
	}
	if m.collection == nil {
		return nil, fmt.Errorf("collection is required")
	}

	results, err := m.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	return results, nil
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	if m.collection == nil {
		return nil
	}
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	m.collection = nil
	return nil
}

// Export writes the collection to a single file; filePath defaults to <folder>/<name>.chromem.
func (m *VectorDBManager) Export(filePath string) (string, error) {
	if m.collection == nil {
		return "", fmt.Errorf("collection is required")
	}
	if filePath == "" {
		filePath = m.filePath
	}

	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", filePath).
		Bool("encrypted", m.encryptionKey != "").
		Msg("Exporting collection")

	err := m.db.ExportToFile(filePath, m.compress, m.encryptionKey, m.collection.Name)
	if err != nil {
		return "", fmt.Errorf("failed to export database: %w", err)
	}
	return filePath, nil
}

func chunkToDocument(c models.Chunk, vec []float32) chromem.Document {
	return chromem.Document{
		ID:      c.ID(),
		Content: c.Content,
		Metadata: map[string]string{
			"source":   c.Source,
			"page":     strconv.Itoa(c.PageNumber),
			"chunk_id": strconv.Itoa(c.ChunkID),
			"start":    strconv.Itoa(c.Start),
			"end":      strconv.Itoa(c.End),
		},
		Embedding: vec,
	}
}

func resultToChunk(r chromem.Result) models.Chunk {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(r.Metadata[key])
		return n
	}
	return models.Chunk{
		Content:    r.Content,
		Source:     r.Metadata["source"],
		PageNumber: atoi("page"),
		ChunkID:    atoi("chunk_id"),
		Start:      atoi("start"),
		End:        atoi("end"),
	}
}
