// Package catalog holds the normalized record shape shared by every source.
package catalog

import (
	"fmt"
	"strings"
)

// MaxPerSource is how many records each source contributes to a search.
const MaxPerSource = 3

// SourceKey identifies one of the fixed content catalogs.
type SourceKey string

const (
	Film  SourceKey = "film"
	Anime SourceKey = "anime"
	Manga SourceKey = "manga"
	Book  SourceKey = "book"
	Game  SourceKey = "game"
)

var keys = []SourceKey{Film, Anime, Manga, Book, Game}

// Keys returns every source key in presentation order.
func Keys() []SourceKey {
	out := make([]SourceKey, len(keys))
	copy(out, keys)
	return out
}

// Valid reports whether k is one of the known sources.
func (k SourceKey) Valid() bool {
	for _, known := range keys {
		if k == known {
			return true
		}
	}
	return false
}

func (k SourceKey) String() string { return string(k) }

// ParseSourceKey accepts a key name, case-insensitively. Plural forms
// ("films", "animes") are accepted as aliases.
func ParseSourceKey(s string) (SourceKey, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	k := SourceKey(name)
	if k.Valid() {
		return k, nil
	}
	if k = SourceKey(strings.TrimSuffix(name, "s")); name != "" && k.Valid() {
		return k, nil
	}
	return "", fmt.Errorf("unknown source: %q", s)
}

// Record is one catalog entry. Every field is always a string; missing
// data is the empty string.
type Record struct {
	Title string `json:"title"`
	Year  string `json:"year"`
	Type  string `json:"type"`
	URL   string `json:"url"`
	Image string `json:"image"`
	Desc  string `json:"desc"`
}

// Truncate returns at most the first n records.
func Truncate(records []Record, n int) []Record {
	if len(records) <= n {
		return records
	}
	return records[:n]
}

// Results maps each source to the records it produced for one query.
type Results map[SourceKey][]Record

// Entry is the wire shape of one source's results.
type Entry struct {
	Key  SourceKey `json:"key"`
	Data []Record  `json:"data"`
}

// Entries returns the results in Keys order. Sources without records get
// an empty, non-nil list.
func (r Results) Entries() []Entry {
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		data := r[k]
		if data == nil {
			data = []Record{}
		}
		out = append(out, Entry{Key: k, Data: data})
	}
	return out
}
