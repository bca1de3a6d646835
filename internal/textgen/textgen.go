// Package textgen produces synthetic input text for embedding requests.
//
// Texts are assembled from random lowercase word-like tokens of 3-8
// characters, approximating one tokenizer token per word. The generator is
// explicitly seeded so repeated runs produce identical payloads.
package textgen

import (
	"math/rand"
	"strings"
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// DefaultSeed matches the seed used by historical benchmark runs so results
// stay comparable across hardware.
const DefaultSeed = 42

// Generator produces deterministic synthetic texts from a seeded PRNG.
// It is not safe for concurrent use; all generation happens before the
// timed window opens, on a single goroutine.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator with its own seeded random source.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Text returns a string of approximately numTokens whitespace-separated
// words. At least one word is always produced.
func (g *Generator) Text(numTokens int) string {
	if numTokens < 1 {
		numTokens = 1
	}

	var sb strings.Builder
	// ~5 chars per word plus separator
	sb.Grow(numTokens * 6)

	for i := 0; i < numTokens; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		length := 3 + g.rng.Intn(6)
		for j := 0; j < length; j++ {
			sb.WriteByte(letters[g.rng.Intn(len(letters))])
		}
	}

	return sb.String()
}

// Batch returns batchSize texts of numTokens each.
func (g *Generator) Batch(batchSize, numTokens int) []string {
	texts := make([]string, batchSize)
	for i := range texts {
		texts[i] = g.Text(numTokens)
	}
	return texts
}

// Batches returns numRequests batches of batchSize texts each. This is the
// full workload for one sweep point, generated up front so generation cost
// never lands inside the measured window.
func (g *Generator) Batches(numRequests, batchSize, numTokens int) [][]string {
	batches := make([][]string, numRequests)
	for i := range batches {
		batches[i] = g.Batch(batchSize, numTokens)
	}
	return batches
}
