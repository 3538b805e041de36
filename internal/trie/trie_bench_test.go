package trie

import (
	"math/rand"
	"testing"
)

func generateRandomSequences(count, maxLength int) [][]string {
	sequences := make([][]string, count)
	for i := range count {
		length := rand.Intn(maxLength) + 1
		sequence := make([]string, length)
		for j := range length {
			sequence[j] = string(rune('a' + rand.Intn(26)))
		}
		sequences[i] = sequence
	}
	return sequences
}

func BenchmarkInsert(b *testing.B) {
	sizes := []struct {
		name      string
		count     int
		maxLength int
	}{
		{"Small", 100, 5},
		{"Medium", 1000, 10},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			sequences := generateRandomSequences(size.count, size.maxLength)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				tr := New()
				for n, seq := range sequences {
					tr.Insert(seq, n)
				}
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	sequences := generateRandomSequences(1000, 4)
	tr := New()
	for n, seq := range sequences {
		tr.Insert(seq, n)
	}
	queries := generateRandomSequences(256, 6)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.lookupKeys(queries[i%len(queries)])
	}
}
