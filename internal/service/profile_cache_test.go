package service

import (
	"testing"
	"time"

	"twin-profile/internal/domain"
)

func sampleProfile(subjectID string) domain.PersonalityProfile {
	return domain.PersonalityProfile{
		ID:        "profile-1",
		SubjectID: subjectID,
		Dimensions: map[domain.Dimension]domain.DimensionScore{
			domain.DimensionExtraversion: {Score: 62, Confidence: 0.8},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryCacheStoreAndGet(t *testing.T) {
	cache := NewMemoryProfileCache()

	if err := cache.Store("subject-1", sampleProfile("subject-1"), time.Hour); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	got, ok, err := cache.Get("subject-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.SubjectID != "subject-1" || got.ID != "profile-1" {
		t.Fatalf("unexpected cached profile: %+v", got)
	}
}

func TestMemoryCacheMissForUnknownSubject(t *testing.T) {
	cache := NewMemoryProfileCache()

	_, ok, err := cache.Get("nobody")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestMemoryCacheExpiresEntries(t *testing.T) {
	cache := NewMemoryProfileCache()

	// TTL negativo: la entrada nace vencida.
	if err := cache.Store("subject-1", sampleProfile("subject-1"), -time.Second); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	_, ok, err := cache.Get("subject-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expired entry must not be returned")
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	cache := NewMemoryProfileCache()

	if err := cache.Store("subject-1", sampleProfile("subject-1"), time.Hour); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := cache.Invalidate("subject-1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	_, ok, _ := cache.Get("subject-1")
	if ok {
		t.Fatalf("invalidated entry must not be returned")
	}
}

func TestMemoryCacheIgnoresBlankSubject(t *testing.T) {
	cache := NewMemoryProfileCache()

	if err := cache.Store("  ", sampleProfile(""), time.Hour); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	_, ok, _ := cache.Get("  ")
	if ok {
		t.Fatalf("blank subject must never be cached")
	}
}

func TestNewRedisProfileCacheNilClient(t *testing.T) {
	if cache := NewRedisProfileCache(nil); cache != nil {
		t.Fatalf("expected nil cache for nil client")
	}
}
