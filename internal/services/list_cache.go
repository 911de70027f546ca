package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"reviewservice/internal/utils"
)

// ListCache holds recent review listing pages. Listings carry no
// cross-request consistency promise, so a short TTL is acceptable; any
// write purges it. A nil *ListCache is valid and caches nothing.
//
// gen counts purges. A reader captures it before querying and set drops
// the page if a purge happened in between.
type ListCache struct {
	cache *utils.Cache
	ttl   time.Duration

	mu  sync.Mutex
	gen uint64
}

// NewListCache returns nil when ttl is not positive.
func NewListCache(size int, ttl time.Duration) (*ListCache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	c, err := utils.NewCache(size)
	if err != nil {
		return nil, err
	}
	return &ListCache{cache: c, ttl: ttl}, nil
}

func (l *ListCache) get(key string) *Page[ReviewResponse] {
	if l == nil {
		return nil
	}
	if page, ok := l.cache.Get(key).(*Page[ReviewResponse]); ok {
		listCacheLookups.WithLabelValues("hit").Inc()
		return page
	}
	listCacheLookups.WithLabelValues("miss").Inc()
	return nil
}

func (l *ListCache) generation() uint64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

func (l *ListCache) set(key string, page *Page[ReviewResponse], gen uint64) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.cache.Set(key, page, l.ttl)
}

func (l *ListCache) purge() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.cache.Purge()
}

func reviewListKey(f ReviewFilter, p Pageable) string {
	reviewType := ""
	if f.ReviewType != nil {
		reviewType = string(*f.ReviewType)
	}
	return fmt.Sprintf("reviews:%q:%s:%d:%d:%s", f.CompanyName, reviewType, p.Page, p.Size, strings.Join(p.Sort, ";"))
}
