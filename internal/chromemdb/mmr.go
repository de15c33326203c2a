package chromemdb

import (
	"context"
	"fmt"
	"math"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"career-advisor/internal/embedding"
	"career-advisor/internal/models"
)

// SearchMMR returns up to k chunks for query, chosen from the fetchK nearest
// neighbours by maximal marginal relevance. lambda weighs relevance (1) against
// diversity (0).
func (m *VectorDBManager) SearchMMR(ctx context.Context, query string, k, fetchK int, lambda float64) ([]models.Chunk, error) {
	if m.collection == nil {
		return nil, fmt.Errorf("collection is required")
	}
	count := m.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}

	queryVec, err := embedding.EmbedQuery(ctx, m.embedder, query)
	if err != nil {
		return nil, err
	}

	n := max(fetchK, k)
	n = min(n, count)
	results, err := m.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       n,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([][]float32, len(results))
	for i, r := range results {
		candidates[i] = r.Embedding
	}
	selected := mmrSelect(queryVec, candidates, k, lambda)

	chunks := make([]models.Chunk, 0, len(selected))
	for _, i := range selected {
		chunks = append(chunks, resultToChunk(results[i]))
	}
	log.Debug().Int("fetched", len(results)).Int("selected", len(chunks)).Msg("MMR search")
	return chunks, nil
}

// mmrSelect returns the indexes of up to k candidates in selection order.
func mmrSelect(query []float32, candidates [][]float32, k int, lambda float64) []int {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	k = min(k, len(candidates))

	relevance := make([]float64, len(candidates))
	for i, c := range candidates {
		relevance[i] = cosineSimilarity(query, c)
	}

	best := 0
	for i := range relevance {
		if relevance[i] > relevance[best] {
			best = i
		}
	}
	selected := []int{best}
	taken := map[int]bool{best: true}

	for len(selected) < k {
		next, nextScore := -1, math.Inf(-1)
		for i, c := range candidates {
			if taken[i] {
				continue
			}
			redundancy := math.Inf(-1)
			for _, j := range selected {
				redundancy = math.Max(redundancy, cosineSimilarity(c, candidates[j]))
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > nextScore {
				next, nextScore = i, score
			}
		}
		selected = append(selected, next)
		taken[next] = true
	}
	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
