package embedding

import (
	"errors"
	"fmt"
	"math"
)

const (
	minMaskSum = 1e-9
	minNorm    = 1e-12
)

// MeanPool averages token vectors weighted by the attention mask.
// The mask sum is clamped so an all-zero mask yields a zero vector.
func MeanPool(tokens [][]float32, mask []float32) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, errors.New("no token embeddings")
	}
	if mask != nil && len(mask) != len(tokens) {
		return nil, fmt.Errorf("mask length %d does not match %d tokens", len(mask), len(tokens))
	}

	dim := len(tokens[0])
	sum := make([]float64, dim)
	var maskSum float64
	for t, token := range tokens {
		if len(token) != dim {
			return nil, fmt.Errorf("token %d has dimension %d, expected %d", t, len(token), dim)
		}
		w := 1.0
		if mask != nil {
			w = float64(mask[t])
		}
		maskSum += w
		for d, x := range token {
			sum[d] += float64(x) * w
		}
	}

	maskSum = math.Max(maskSum, minMaskSum)
	pooled := make([]float32, dim)
	for d := range sum {
		pooled[d] = float32(sum[d] / maskSum)
	}
	return pooled, nil
}

// L2Normalize returns v scaled to unit length.
func L2Normalize(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	norm := math.Max(math.Sqrt(sq), minNorm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
