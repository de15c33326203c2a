package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"career-advisor/internal/models"
)

// Retriever returns the chunks most useful for answering query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.Chunk, error)
}

// MMRSearcher is the slice of the vector index the retriever needs.
type MMRSearcher interface {
	SearchMMR(ctx context.Context, query string, k, fetchK int, lambda float64) ([]models.Chunk, error)
}

// MMRRetriever fetches FetchK neighbours and keeps K by maximal marginal relevance.
type MMRRetriever struct {
	index  MMRSearcher
	K      int
	FetchK int
	Lambda float64
}

func NewMMRRetriever(index MMRSearcher, k, fetchK int, lambda float64) *MMRRetriever {
	return &MMRRetriever{index: index, K: k, FetchK: fetchK, Lambda: lambda}
}

func (r *MMRRetriever) Retrieve(ctx context.Context, query string) ([]models.Chunk, error) {
	chunks, err := r.index.SearchMMR(ctx, query, r.K, r.FetchK, r.Lambda)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	return chunks, nil
}

// CompressionRetriever filters the chunks of a base retriever through an extractor.
type CompressionRetriever struct {
	base      Retriever
	extractor *LLMExtractor
}

func NewCompressionRetriever(base Retriever, extractor *LLMExtractor) *CompressionRetriever {
	return &CompressionRetriever{base: base, extractor: extractor}
}

func (r *CompressionRetriever) Retrieve(ctx context.Context, query string) ([]models.Chunk, error) {
	chunks, err := r.base.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	compressed, err := r.extractor.Compress(ctx, query, chunks)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("retrieved", len(chunks)).Int("kept", len(compressed)).Msg("Compressed retrieved context")
	return compressed, nil
}
