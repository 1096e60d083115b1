package selection

import (
	"fmt"
	"testing"
)

func BenchmarkStickyRouter_SelectTrial(b *testing.B) {
	router := NewStickyRouter()
	keys := []string{"control", "a", "b", "c"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = router.SelectTrial("user-42", "search.ranker", keys)
	}
}

func BenchmarkStickyRouter_ManyIdentities(b *testing.B) {
	router := NewStickyRouter()
	keys := []string{"control", "a", "b", "c"}
	identities := make([]string, 1024)
	for i := range identities {
		identities[i] = fmt.Sprintf("user-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = router.SelectTrial(identities[i%len(identities)], "search.ranker", keys)
	}
}
