package db

import (
	"errors"
	"strings"
)

// DefaultKeyPrefix namespaces every key the service writes.
const DefaultKeyPrefix = "storyline"

// Keyspace derives every key name from one prefix so that several deployments can share a database.
type Keyspace struct {
	prefix string
}

// NewKeyspace validates prefix and returns a Keyspace. An empty prefix selects DefaultKeyPrefix.
func NewKeyspace(prefix string) (Keyspace, error) {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if !IsValidIdentifier(prefix) {
		return Keyspace{}, errors.New("key prefix contains invalid characters")
	}
	return Keyspace{prefix: prefix}, nil
}

// Prefix returns the namespace prefix without trailing colon.
func (k Keyspace) Prefix() string { return k.prefix }

// StoryPrefix is the key prefix shared by all story hashes; the search index covers it.
func (k Keyspace) StoryPrefix() string { return k.prefix + ":story:" }

// Story returns the hash key of one story.
func (k Keyspace) Story(id string) string { return k.StoryPrefix() + id }

// StoryID strips StoryPrefix from a story key.
func (k Keyspace) StoryID(key string) string { return strings.TrimPrefix(key, k.StoryPrefix()) }

// Order is the sorted set holding story ids scored by creation sequence.
func (k Keyspace) Order() string { return k.prefix + ":stories:order" }

// Sequence is the counter that allocates creation sequence numbers.
func (k Keyspace) Sequence() string { return k.prefix + ":stories:seq" }

// Index is the name of the story vector index.
func (k Keyspace) Index() string { return k.prefix + ":stories:idx" }

// EmbeddingCache returns the cache key for an embedding input hash.
func (k Keyspace) EmbeddingCache(hash string) string { return k.prefix + ":emb:" + hash }
