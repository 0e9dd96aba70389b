package search

import (
	"math"
	"sort"

	"github.com/futig/rag-chat/internal/entity"
)

// ScoreOffset shifts cosine similarity from [-1,1] into [0,2].
const ScoreOffset = 1.0

// Rank orders documents by score descending, ties by id ascending, and cuts
// the result to k entries.
func Rank(docs []entity.RetrievedDocument, k int) []entity.RetrievedDocument {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})

	if k >= 0 && len(docs) > k {
		docs = docs[:k]
	}

	return docs
}

// CosineSimilarity returns 0 when either vector has zero norm.
func CosineSimilarity(a, b entity.EmbeddingVector) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
