package embedding

import (
	"math"
	"sort"

	"data-catalog/backend/internal/catalog"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero-norm vector (including an empty or mismatched one) yields 0.0.
// The result is clamped to [-1, 1] to absorb floating-point drift.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1.0, math.Max(-1.0, similarity))
}

// RankSimilar scores each candidate against the query vector and returns the
// top matches. Candidates without an embedding are skipped; candidates below
// the threshold are excluded. Results are sorted by similarity descending,
// ties keep their input order, and at most topK entries are returned.
func RankSimilar(query []float32, candidates []catalog.EmbeddingCandidate, topK int, threshold float64) []catalog.SearchResult {
	if topK < 1 {
		topK = 5
	}

	results := make([]catalog.SearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if len(candidate.Embedding) == 0 {
			continue
		}

		similarity := CosineSimilarity(query, candidate.Embedding)
		if similarity < threshold {
			continue
		}

		results = append(results, catalog.SearchResult{
			ID:         candidate.ID,
			Name:       candidate.Name,
			Similarity: similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
