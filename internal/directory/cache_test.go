package directory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
)

func TestCacheReplaceAndLookups(t *testing.T) {
	c := NewCache()
	c.Replace([]api.Person{
		{ID: "p1", FirstName: "Gavin", LastName: "Ensley", Email: "Gavin@Example.com"},
		{ID: "p2", FirstName: "Lena", LastName: "Okafor", Email: "lena@example.com"},
		{FirstName: "No", LastName: "ID"}, // dropped: no identifier
	})

	require.Equal(t, 2, c.Len())

	p, ok := c.ByID("p1")
	require.True(t, ok)
	require.Equal(t, "Gavin", p.FirstName)

	// email lookup is case-insensitive
	p, ok = c.ByEmail("gavin@EXAMPLE.com")
	require.True(t, ok)
	require.Equal(t, "p1", p.ID)

	_, ok = c.ByEmail("")
	require.False(t, ok)
}

func TestCacheResolveIDBeforeEmail(t *testing.T) {
	c := NewCache()
	c.Replace([]api.Person{
		{ID: "p1", FirstName: "Gavin", Email: "shared@example.com"},
		{ID: "p2", FirstName: "Lena", Email: "lena@example.com"},
	})

	// the id wins even when the email points elsewhere
	p, ok := c.Resolve("p2", "shared@example.com")
	require.True(t, ok)
	require.Equal(t, "p2", p.ID)

	p, ok = c.Resolve("", "shared@example.com")
	require.True(t, ok)
	require.Equal(t, "p1", p.ID)

	_, ok = c.Resolve("missing", "missing@example.com")
	require.False(t, ok)
}

func TestCacheUpsertReindexesEmail(t *testing.T) {
	c := NewCache()
	c.Replace([]api.Person{
		{ID: "p1", FirstName: "Gavin", Email: "old@example.com"},
	})

	c.Upsert(api.Person{ID: "p1", FirstName: "Gavin", Email: "new@example.com"})

	_, ok := c.ByEmail("old@example.com")
	require.False(t, ok, "stale email index entry must be dropped")

	p, ok := c.ByEmail("new@example.com")
	require.True(t, ok)
	require.Equal(t, "p1", p.ID)

	// upsert of a brand-new person grows the cache
	c.Upsert(api.Person{ID: "p2", FirstName: "Lena", Email: "lena@example.com"})
	require.Equal(t, 2, c.Len())
}

func TestCacheRemove(t *testing.T) {
	c := NewCache()
	c.Replace([]api.Person{
		{ID: "p1", Email: "gavin@example.com"},
	})

	c.Remove("p1")
	require.Equal(t, 0, c.Len())
	_, ok := c.ByEmail("gavin@example.com")
	require.False(t, ok)

	c.Remove("p1") // repeated removal is a no-op
	require.Equal(t, 0, c.Len())
}
