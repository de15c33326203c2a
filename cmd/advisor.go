package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"career-advisor/internal/chromemdb"
	"career-advisor/internal/config"
	"career-advisor/internal/db"
	"career-advisor/internal/embedding"
	"career-advisor/internal/llmservice"
	"career-advisor/internal/models"
	"career-advisor/internal/parser"
	"career-advisor/internal/rag"
	"career-advisor/internal/server"
)

// advisor is the assembled answering pipeline plus the resources it holds open.
type advisor struct {
	index   *chromemdb.VectorDBManager
	rag     *rag.RAG
	closers []func() error
}

func (a *advisor) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("Error releasing resource")
		}
	}
}

// userMessage turns pipeline errors into the text shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrIndexBuild):
		return "Failed to build vector database."
	case errors.Is(err, models.ErrMissingInput):
		return "Please provide your resume, personal write-up and the job qualifications."
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return "The language model is unavailable, please try again."
	default:
		return err.Error()
	}
}

func loadChunks(ctx context.Context, cfg *config.Config) ([]models.Chunk, error) {
	docs, err := parser.LoadDirectory(ctx, cfg.RAG.ContentDir, cfg.RAG.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	splitter := parser.NewSplitter(cfg.RAG.ChunkSize, *cfg.RAG.ChunkOverlap)
	return splitter.SplitDocuments(docs), nil
}

func buildIndex(ctx context.Context, cfg *config.Config) (*chromemdb.VectorDBManager, error) {
	chunks, err := loadChunks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexBuild, err)
	}

	return chromemdb.BuildOrLoad(ctx, chromemdb.IndexOptions{
		Folder:          cfg.Index.Folder,
		Name:            cfg.Index.Name,
		FreshnessPolicy: cfg.Index.FreshnessPolicy,
		EncryptionKey:   cfg.Index.EncryptionKey,
		EmbeddingModel:  cfg.EmbedLLM.Model,
	}, chunks, embedder)
}

func loadProfile(cfg *config.Config) (models.Profile, error) {
	var profile models.Profile
	var err error
	if profile.Resume, err = parser.ReadArtifact(cfg.Profile.ResumePath); err != nil {
		return profile, fmt.Errorf("resume: %w", err)
	}
	if profile.PersonalWriteup, err = parser.ReadArtifact(cfg.Profile.WriteupPath); err != nil {
		return profile, fmt.Errorf("personal write-up: %w", err)
	}
	if profile.JobQualifications, err = parser.ReadArtifact(cfg.Profile.JobQualificationsPath); err != nil {
		return profile, fmt.Errorf("job qualifications: %w", err)
	}
	return profile, nil
}

// newCompleter returns the chat model, cached in Redis when configured. An
// unreachable cache is logged and skipped.
func newCompleter(ctx context.Context, cfg *config.Config) (llmservice.Completer, func() error, error) {
	completer, err := llmservice.NewCompleter(&cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.RedisAddr == "" {
		return completer, nil, nil
	}

	cache, err := llmservice.NewRedisCache(ctx, &cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Completion cache disabled")
		return completer, nil, nil
	}
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	return llmservice.NewCachedCompleter(completer, cache, completer.Model(), ttl), cache.Close, nil
}

func newAdvisor(ctx context.Context, cfg *config.Config) (*advisor, error) {
	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &advisor{index: index}
	completer, closeCache, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}

	var retriever rag.Retriever = rag.NewMMRRetriever(index, cfg.RAG.TopK, cfg.RAG.FetchK, *cfg.RAG.LambdaMult)
	if *cfg.RAG.Compress {
		retriever = rag.NewCompressionRetriever(retriever, rag.NewLLMExtractor(completer))
	}
	a.rag = rag.NewRAG(retriever, completer, profile,
		rag.WithCondenseQuestion(*cfg.RAG.CondenseQuestion),
		rag.WithMaxPromptTurns(cfg.Chat.MaxPromptTurns),
	)
	return a, nil
}

// openTranscripts returns the transcript store, or nil when none is configured
// or the database cannot be reached.
func openTranscripts(ctx context.Context, cfg *config.Config) (server.TranscriptSaver, func() error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	store, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("Transcript store disabled")
		return nil, nil
	}
	return store, store.Close
}
