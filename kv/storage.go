package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

// Pair is a single entry. Null marks a key that was given without any value at all (e.g. a
// query flag `?debug`), which is distinct from an empty value (`?debug=`).
type Pair struct {
	Key, Value string
	Null       bool
}

// Storage is an ordered associative structure for storing (string, string) pairs. Keys are
// compared case-insensitively and duplicates are preserved in insertion order. It uses linear
// search, which proves to be more efficient on relatively low amount of entries, which often
// enough is the case for request headers and query parameters.
type Storage struct {
	pairs []Pair
}

// View grants read-only access to a storage.
type View interface {
	Value(key string) string
	ValueOr(key, or string) string
	Get(key string) (value string, found bool)
	Lookup(key string) (Pair, bool)
	IsNull(key string) bool
	Values(key string) []string
	Keys() []string
	Pairs() iter.Seq2[string, string]
	Has(key string) bool
	Len() int
	Empty() bool
	Clone() *Storage
}

var _ View = new(Storage)

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// Add adds a new pair of key and value.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// AddNull adds a key carrying no value.
func (s *Storage) AddNull(key string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:  key,
		Null: true,
	})
	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value and a bool, indicating whether the value was found. A null entry is
// reported as found with an empty value.
func (s *Storage) Get(key string) (value string, found bool) {
	pair, found := s.Lookup(key)
	return pair.Value, found
}

// Lookup returns the first pair stored under the key.
func (s *Storage) Lookup(key string) (Pair, bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair, true
		}
	}

	return Pair{}, false
}

// IsNull reports whether the first entry of the key exists and carries no value.
func (s *Storage) IsNull(key string) bool {
	pair, found := s.Lookup(key)
	return found && pair.Null
}

// Values returns all values by the key, in insertion order. Returns nil if key doesn't exist.
// The returned slice is a fresh copy and may be kept.
func (s *Storage) Values(key string) (values []string) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(pair.Key, key) {
			values = append(values, pair.Value)
		}
	}

	return values
}

// Keys returns all unique presented keys, in the order of their first appearance.
func (s *Storage) Keys() []string {
	var unique []string

	for _, pair := range s.pairs {
		if contains(unique, pair.Key) {
			continue
		}

		unique = append(unique, pair.Key)
	}

	return unique
}

// Pairs returns an iterator over all the key-value pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				break
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Lookup(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone creates a deep copy, which may be used later or stored somewhere safely.
func (s *Storage) Clone() *Storage {
	if len(s.pairs) == 0 {
		return New()
	}

	pairs := make([]Pair, len(s.pairs))
	copy(pairs, s.pairs)

	return &Storage{pairs: pairs}
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

func contains(collection []string, key string) bool {
	for _, element := range collection {
		if strcomp.EqualFold(element, key) {
			return true
		}
	}

	return false
}
