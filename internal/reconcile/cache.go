package reconcile

import "time"

// Entry is the latest known value of a configuration topic.
type Entry struct {
	Value     float64
	Timestamp time.Time
}

// Cache maps fully-qualified configuration topics to their latest value.
// Entries are overwritten, never removed. Owned by the metrics loop;
// not safe for concurrent use.
type Cache struct {
	entries map[string]Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Set stores the latest value for topic.
func (c *Cache) Set(topic string, value float64, ts time.Time) {
	c.entries[topic] = Entry{Value: value, Timestamp: ts}
}

// Get returns the entry for topic.
func (c *Cache) Get(topic string) (Entry, bool) {
	e, ok := c.entries[topic]
	return e, ok
}

// Len reports the number of cached topics.
func (c *Cache) Len() int {
	return len(c.entries)
}
