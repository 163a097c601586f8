package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ListCache keeps rendered list views for a while. Keys are scoped per viewer
// so that one user never sees another user's cached list.
type ListCache struct {
	c *gocache.Cache
}

func NewListCache(ttl time.Duration) *ListCache {
	return &ListCache{c: gocache.New(ttl, 2*ttl)}
}

// Key builds a cache key for a list kind and viewer. ownerID nil means the
// unrestricted manager view.
func Key(kind string, ownerID *int) string {
	if ownerID == nil {
		return kind + ":all"
	}
	return fmt.Sprintf("%s:owner:%d", kind, *ownerID)
}

func (l *ListCache) Get(key string) (any, bool) {
	if l == nil {
		return nil, false
	}
	return l.c.Get(key)
}

func (l *ListCache) Set(key string, v any) {
	if l == nil {
		return
	}
	l.c.SetDefault(key, v)
}

// Flush drops every entry, used after writes that change list contents.
func (l *ListCache) Flush() {
	if l == nil {
		return
	}
	l.c.Flush()
}
