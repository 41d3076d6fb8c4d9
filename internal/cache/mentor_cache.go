package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/skillbridge/skillbridge-api/internal/models"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"go.uber.org/zap"
)

// MentorDataSource defines the interface for mentor directory fetching
type MentorDataSource interface {
	ListMentors(ctx context.Context, filter models.MentorFilterOptions) ([]*models.User, int, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

const (
	mentorKeyPrefix  = "mentor:id:"
	directoryPrefix  = "mentor:page:"
	cacheCheckPeriod = 30 * time.Second
)

// directoryPage is one cached directory query result
type directoryPage struct {
	Mentors []*models.User
	Total   int
}

// MentorCache is a read-through cache in front of the mentor directory.
// Pages expire on the configured TTL; any mentor write flushes all pages
// so the directory never serves a profile older than its last edit plus TTL.
type MentorCache struct {
	cache      *gocache.Cache
	dataSource MentorDataSource
	mu         sync.RWMutex
	disabled   bool
	ttl        time.Duration
}

// NewMentorCache creates a mentor directory cache
func NewMentorCache(dataSource MentorDataSource, ttlSeconds int, disabled bool) *MentorCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &MentorCache{
		cache:      gocache.New(ttl, cacheCheckPeriod),
		dataSource: dataSource,
		disabled:   disabled,
		ttl:        ttl,
	}
}

// ListMentors serves a directory page, falling through to the data source
// on miss
func (mc *MentorCache) ListMentors(ctx context.Context, filter models.MentorFilterOptions) ([]*models.User, int, error) {
	if mc.disabled {
		return mc.dataSource.ListMentors(ctx, filter)
	}

	key := directoryKey(filter)

	if data, found := mc.cache.Get(key); found {
		if page, ok := data.(*directoryPage); ok {
			metrics.CacheHits.WithLabelValues("mentor_directory").Inc()
			return page.Mentors, page.Total, nil
		}
		mc.cache.Delete(key)
	}

	metrics.CacheMisses.WithLabelValues("mentor_directory").Inc()

	mentors, total, err := mc.dataSource.ListMentors(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	mc.cache.Set(key, &directoryPage{Mentors: mentors, Total: total}, mc.ttl)
	metrics.CacheSize.WithLabelValues("mentor_directory").Set(float64(mc.cache.ItemCount()))

	return mentors, total, nil
}

// GetMentor serves a single mentor profile, falling through on miss
func (mc *MentorCache) GetMentor(ctx context.Context, id string) (*models.User, error) {
	if mc.disabled {
		return mc.dataSource.GetByID(ctx, id)
	}

	key := mentorKeyPrefix + id

	if data, found := mc.cache.Get(key); found {
		if mentor, ok := data.(*models.User); ok {
			metrics.CacheHits.WithLabelValues("mentor_by_id").Inc()
			return mentor, nil
		}
		mc.cache.Delete(key)
	}

	metrics.CacheMisses.WithLabelValues("mentor_by_id").Inc()

	mentor, err := mc.dataSource.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mc.cache.Set(key, mentor, mc.ttl)
	return mentor, nil
}

// Invalidate drops a mentor's cached profile and every directory page.
// Called after profile or avatar updates.
func (mc *MentorCache) Invalidate(id string) {
	if mc.disabled {
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Delete(mentorKeyPrefix + id)
	for key := range mc.cache.Items() {
		if len(key) > len(directoryPrefix) && key[:len(directoryPrefix)] == directoryPrefix {
			mc.cache.Delete(key)
		}
	}

	metrics.CacheSize.WithLabelValues("mentor_directory").Set(float64(mc.cache.ItemCount()))
	logger.Debug("Mentor cache invalidated", zap.String("mentor_id", id))
}

// Clear flushes the entire cache
func (mc *MentorCache) Clear() {
	mc.cache.Flush()
	logger.Info("Mentor cache cleared")
}

func directoryKey(filter models.MentorFilterOptions) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", directoryPrefix, filter.Skill, filter.Search, filter.Page, filter.Limit)
}
