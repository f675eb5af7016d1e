package bucket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"docverify/internal/ratelimit/models"
)

func BenchmarkAllow(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	key := models.VerificationIPKey("203.0.113.1")

	for b.Loop() {
		_, _ = store.Allow(ctx, key, 1_000_000, time.Hour)
	}
}

func BenchmarkAllow_Parallel(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()
	key := models.VerificationIPKey("203.0.113.1")

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.Allow(ctx, key, 1_000_000, time.Hour)
		}
	})
}

// Many distinct client IPs, as seen by a public verification endpoint.
func BenchmarkAllow_HighCardinality(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		key := models.VerificationIPKey(fmt.Sprintf("10.0.%d.%d", (i/256)%256, i%256))
		_, _ = store.Allow(ctx, key, 100, time.Hour)
	}
}
