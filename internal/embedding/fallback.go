package embedding

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Dimensions is the length of every vector an Encoder returns
const Dimensions = 300

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// FallbackVector builds a deterministic bag-of-hashed-words vector.
// Each surviving token adds 1/total at index |hash| mod dims, so a slot holds
// the summed relative frequency of every token hashed to it.
func FallbackVector(text string, dims int) types.EmbeddingVector {
	if dims <= 0 {
		dims = Dimensions
	}
	vector := make(types.EmbeddingVector, dims)

	tokens := make([]string, 0)
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		token := nonAlphanumeric.ReplaceAllString(raw, "")
		if len(token) > 2 {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return vector
	}

	total := float64(len(tokens))
	for _, token := range tokens {
		vector[bucket(hashString(token), dims)] += 1 / total
	}
	return vector
}

// hashString is the classic shift-5 polynomial string hash (h*31 + c),
// wrapped to a signed 32-bit integer on every step.
func hashString(s string) int32 {
	var h int32
	for _, r := range s {
		h = (h << 5) - h + int32(r)
	}
	return h
}

func bucket(h int32, dims int) int {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(dims))
}
