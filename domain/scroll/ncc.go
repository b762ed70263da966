package scroll

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// CorrelateRow performs frequency-domain normalized cross-correlation of a
// 1-D template against a search buffer. It returns the best offset of the
// template within search and a confidence score in [0,1].
//
// It is a drop-in alternative to the per-offset strip scoring used by the
// Detector for cases where a larger search range makes the linear scan too
// slow; both produce the same logical contract (best offset + confidence).
func CorrelateRow(template, search []float64) (int, float64) {
	n := len(search)
	m := len(template)
	if m == 0 || m > n {
		return 0, 0
	}

	size := nextPow2(n + m - 1)

	// Zero-padded, time-reversed template turns the convolution theorem
	// into correlation.
	tmpl := make([]float64, size)
	for i, v := range template {
		tmpl[m-1-i] = v
	}
	buf := make([]float64, size)
	copy(buf, search)

	tf := fft.FFTReal(tmpl)
	sf := fft.FFTReal(buf)
	prod := make([]complex128, size)
	for i := range prod {
		prod[i] = tf[i] * sf[i]
	}
	res := fft.IFFT(prod)

	// Peak over the valid convolution indices.
	bestIdx := 0
	bestVal := math.Inf(-1)
	for i := 0; i <= n-m; i++ {
		if v := real(res[i+m-1]); v > bestVal {
			bestVal = v
			bestIdx = i
		}
	}

	// Normalize by template energy at full scale.
	score := bestVal / (float64(m) * 255.0 * 255.0)
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return bestIdx, score
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
