package embedding

import (
	"context"
	"math"
)

// CosineSimilarity returns the cosine of the angle between two
// equal-length vectors. It is called O(n²) times per evaluation batch, so
// it allocates nothing. Zero-norm input yields 0.
func CosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// PairwiseMatrix embeds every text once and returns the n×n cosine
// similarity matrix: symmetric, 1 on the diagonal. If the provider is
// unavailable or any embedding fails, it returns the identity matrix,
// treating nothing as a duplicate rather than failing the evaluation.
func PairwiseMatrix(ctx context.Context, p *Provider, texts []string) [][]float64 {
	n := len(texts)

	vectors := make([][]float64, n)
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return identityMatrix(n)
		}
		vectors[i] = v
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := CosineSimilarity(vectors[i], vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

func identityMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}
