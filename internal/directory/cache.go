package directory

import (
	"strings"
	"sync"
	"time"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
)

// Cache is the in-memory person directory. It is loaded once at
// bootstrap and only ever replaced wholesale on an explicit refresh;
// patching individual records on refresh is deliberately not supported
// to avoid partial-update drift. No TTL: the cache is valid for the
// lifetime of the process unless refreshed.
type Cache struct {
	mu       sync.RWMutex
	byID     map[string]api.Person
	emailIdx map[string]string // lowercased email -> person id
	loadedAt time.Time
}

func NewCache() *Cache {
	return &Cache{
		byID:     make(map[string]api.Person),
		emailIdx: make(map[string]string),
	}
}

// Replace swaps in a new snapshot and rebuilds the email index.
func (c *Cache) Replace(people []api.Person) {
	byID := make(map[string]api.Person, len(people))
	emailIdx := make(map[string]string, len(people))
	for _, p := range people {
		if p.ID == "" {
			continue
		}
		byID[p.ID] = p
		if p.Email != "" {
			emailIdx[strings.ToLower(p.Email)] = p.ID
		}
	}

	c.mu.Lock()
	c.byID = byID
	c.emailIdx = emailIdx
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

// ByID looks a person up by identifier.
func (c *Cache) ByID(id string) (api.Person, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// ByEmail looks a person up by email, case-insensitively.
func (c *Cache) ByEmail(email string) (api.Person, bool) {
	if email == "" {
		return api.Person{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.emailIdx[strings.ToLower(email)]
	if !ok {
		return api.Person{}, false
	}
	p, ok := c.byID[id]
	return p, ok
}

// Resolve finds a person by id first, falling back to email. This is
// the resolution order the attendance join relies on.
func (c *Cache) Resolve(id, email string) (api.Person, bool) {
	if id != "" {
		if p, ok := c.ByID(id); ok {
			return p, true
		}
	}
	return c.ByEmail(email)
}

// All returns a copy of every directory entry.
func (c *Cache) All() []api.Person {
	c.mu.RLock()
	defer c.mu.RUnlock()
	people := make([]api.Person, 0, len(c.byID))
	for _, p := range c.byID {
		people = append(people, p)
	}
	return people
}

// Upsert patches one record in place. Used by the write-then-refresh
// action handlers to reflect a create/update immediately; the follow-up
// background refresh still replaces the whole cache.
func (c *Cache) Upsert(p api.Person) {
	if p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.byID[p.ID]; ok && old.Email != "" {
		delete(c.emailIdx, strings.ToLower(old.Email))
	}
	c.byID[p.ID] = p
	if p.Email != "" {
		c.emailIdx[strings.ToLower(p.Email)] = p.ID
	}
}

// Remove drops a person from the cache. The caller is responsible for
// cascading the removal into derived event lists in the same update.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.byID[id]; ok {
		if p.Email != "" {
			delete(c.emailIdx, strings.ToLower(p.Email))
		}
		delete(c.byID, id)
	}
}

// Len reports the number of cached people.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// LoadedAt reports when the current snapshot was installed.
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
