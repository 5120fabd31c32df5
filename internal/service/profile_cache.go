package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"twin-profile/internal/domain"
)

// ProfileCache guarda el ultimo perfil calculado por sujeto para que la UI
// pueda leerlo sin recalcular ni tocar la base.
type ProfileCache interface {
	Store(subjectID string, profile domain.PersonalityProfile, ttl time.Duration) error
	Get(subjectID string) (domain.PersonalityProfile, bool, error)
	Invalidate(subjectID string) error
}

type memoryProfileCache struct {
	mu    sync.Mutex
	items map[string]cachedProfile
}

type cachedProfile struct {
	profile   domain.PersonalityProfile
	expiresAt time.Time
}

func NewMemoryProfileCache() ProfileCache {
	return &memoryProfileCache{
		items: make(map[string]cachedProfile),
	}
}

func (c *memoryProfileCache) Store(subjectID string, profile domain.PersonalityProfile, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(subjectID) == "" {
		return nil
	}
	c.items[subjectID] = cachedProfile{
		profile:   profile,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (c *memoryProfileCache) Get(subjectID string) (domain.PersonalityProfile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[subjectID]
	if !ok {
		return domain.PersonalityProfile{}, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, subjectID)
		return domain.PersonalityProfile{}, false, nil
	}
	return entry.profile, true, nil
}

func (c *memoryProfileCache) Invalidate(subjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, subjectID)
	return nil
}

type redisProfileCache struct {
	client *redis.Client
	prefix string
}

func NewRedisProfileCache(client *redis.Client) ProfileCache {
	if client == nil {
		return nil
	}
	return &redisProfileCache{
		client: client,
		prefix: "profile:latest:",
	}
}

func (c *redisProfileCache) Store(subjectID string, profile domain.PersonalityProfile, ttl time.Duration) error {
	if strings.TrimSpace(subjectID) == "" {
		return nil
	}
	doc, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.prefix+subjectID, doc, ttl).Err()
}

func (c *redisProfileCache) Get(subjectID string) (domain.PersonalityProfile, bool, error) {
	if strings.TrimSpace(subjectID) == "" {
		return domain.PersonalityProfile{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	doc, err := c.client.Get(ctx, c.prefix+subjectID).Bytes()
	if err == redis.Nil {
		return domain.PersonalityProfile{}, false, nil
	}
	if err != nil {
		return domain.PersonalityProfile{}, false, err
	}
	var profile domain.PersonalityProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return domain.PersonalityProfile{}, false, err
	}
	return profile, true, nil
}

func (c *redisProfileCache) Invalidate(subjectID string) error {
	if strings.TrimSpace(subjectID) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.prefix+subjectID).Err()
}
