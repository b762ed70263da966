package scroll

import (
	"math/rand"
	"testing"
)

func TestCorrelateRow_FindsEmbeddedTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	template := make([]float64, 80)
	for i := range template {
		if rng.Float64() < 0.3 {
			template[i] = 255
		}
	}
	search := make([]float64, 400)
	copy(search[100:], template)

	offset, score := CorrelateRow(template, search)
	if offset != 100 {
		t.Fatalf("expected offset 100, got %d", offset)
	}
	if score <= 0 || score > 1 {
		t.Fatalf("score out of range: %f", score)
	}
}

func TestCorrelateRow_DegenerateInputs(t *testing.T) {
	if off, score := CorrelateRow(nil, make([]float64, 10)); off != 0 || score != 0 {
		t.Fatalf("empty template: got %d, %f", off, score)
	}
	if off, score := CorrelateRow(make([]float64, 20), make([]float64, 10)); off != 0 || score != 0 {
		t.Fatalf("oversized template: got %d, %f", off, score)
	}
}
