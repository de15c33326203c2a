package chromemdb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"career-advisor/internal/config"
	"career-advisor/internal/embedding"
	"career-advisor/internal/helper"
	"career-advisor/internal/models"
)

// IndexOptions addresses a persisted index and selects how staleness is judged.
type IndexOptions struct {
	Folder          string
	Name            string
	FreshnessPolicy string
	EncryptionKey   string
	EmbeddingModel  string
}

// Manifest records what a persisted collection was built from.
type Manifest struct {
	Name           string    `yaml:"name"`
	ContentHash    string    `yaml:"content_hash"`
	ChunkCount     int       `yaml:"chunk_count"`
	EmbeddingModel string    `yaml:"embedding_model"`
	BuiltAt        time.Time `yaml:"built_at"`
}

// BuildOrLoad returns a ready index over chunks, reusing the persisted collection
// when the freshness policy allows it. An empty chunk set never yields an index.
//
// With the presence policy a non-empty folder is loaded as is, even when the
// content directory has changed since it was built.
func BuildOrLoad(ctx context.Context, opts IndexOptions, chunks []models.Chunk, embedder embedding.Embedder) (*VectorDBManager, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, models.ErrNoChunks)
	}

	switch opts.FreshnessPolicy {
	case config.PolicyPresence:
		return presenceBuildOrLoad(ctx, opts, chunks, embedder)
	case config.PolicyContentHash, "":
		return hashBuildOrLoad(ctx, opts, chunks, embedder)
	default:
		return nil, fmt.Errorf("%w: unknown freshness policy %q", models.ErrIndexBuild, opts.FreshnessPolicy)
	}
}

func presenceBuildOrLoad(ctx context.Context, opts IndexOptions, chunks []models.Chunk, embedder embedding.Embedder) (*VectorDBManager, error) {
	existing := helper.FolderHasEntries(opts.Folder)
	if err := helper.CreateFolder(opts.Folder); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	m, err := NewVectorDBManager(opts.Folder, opts.Name, false, opts.EncryptionKey, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	if existing {
		log.Info().Str("folder", opts.Folder).Str("name", opts.Name).Msg("Loading vector index")
		if !m.GetCollection(opts.Name) {
			return nil, fmt.Errorf("%w: index %q not found in %s", models.ErrIndexBuild, opts.Name, opts.Folder)
		}
		m.Loaded = true
		return m, nil
	}

	log.Info().Str("folder", opts.Folder).Str("name", opts.Name).Msg("Creating vector index")
	if err := m.build(ctx, opts.Name, chunks); err != nil {
		return nil, err
	}
	return m, nil
}

func hashBuildOrLoad(ctx context.Context, opts IndexOptions, chunks []models.Chunk, embedder embedding.Embedder) (*VectorDBManager, error) {
	if err := helper.CreateFolder(opts.Folder); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	m, err := NewVectorDBManager(opts.Folder, opts.Name, false, opts.EncryptionKey, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	hash := ContentHash(chunks, opts.EmbeddingModel)
	manifest, err := ReadManifest(opts.Folder, opts.Name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Ignoring unreadable index manifest")
	}

	if m.GetCollection(opts.Name) {
		if manifest != nil && manifest.ContentHash == hash && m.Count() == manifest.ChunkCount {
			log.Info().Str("folder", opts.Folder).Str("name", opts.Name).Int("chunks", m.Count()).Msg("Loading vector index")
			m.Loaded = true
			return m, nil
		}
		log.Info().Str("name", opts.Name).Msg("Vector index is stale, rebuilding")
		if err := m.DeleteCollection(); err != nil {
			return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
		}
	}

	log.Info().Str("folder", opts.Folder).Str("name", opts.Name).Msg("Creating vector index")
	if err := m.build(ctx, opts.Name, chunks); err != nil {
		return nil, err
	}

	err = WriteManifest(opts.Folder, Manifest{
		Name:           opts.Name,
		ContentHash:    hash,
		ChunkCount:     len(chunks),
		EmbeddingModel: opts.EmbeddingModel,
		BuiltAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}
	return m, nil
}

func (m *VectorDBManager) build(ctx context.Context, name string, chunks []models.Chunk) error {
	vectors, err := embedding.GenerateEmbedding(ctx, m.embedder, chunks)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chunkToDocument(c, vectors[i])
	}

	if _, err := m.GetOrCreateCollection(name); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := m.CreateDocs(ctx, docs); err != nil {
		return fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}
	return nil
}

// ContentHash fingerprints the chunk set and the embedding model that indexes it.
func ContentHash(chunks []models.Chunk, embeddingModel string) string {
	h := sha256.New()
	h.Write([]byte(embeddingModel))
	h.Write([]byte{0})
	for _, c := range chunks {
		h.Write([]byte(c.Source))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(c.PageNumber)))
		h.Write([]byte{0})
		h.Write([]byte(c.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func manifestPath(folder, name string) string {
	return filepath.Join(folder, name+".manifest.yaml")
}

// ReadManifest loads the manifest of the named index.
func ReadManifest(folder, name string) (*Manifest, error) {
	data, err := os.ReadFile(manifestPath(folder, name))
	if err != nil {
		return nil, err
	}
	var man Manifest
	if err := yaml.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &man, nil
}

// WriteManifest stores man next to the collection it describes.
func WriteManifest(folder string, man Manifest) error {
	data, err := yaml.Marshal(man)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath(folder, man.Name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
