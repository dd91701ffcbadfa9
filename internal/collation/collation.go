// Package collation provides the string comparison strategy used to sort
// lessons and names on the attendance lists.
//
// The default strategy compares like a Dutch reader would: case and
// diacritics are ignored ("Émile" sorts with "emile"), and letters are ordered
// by the Dutch collation rules from golang.org/x/text.
package collation

import (
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two strings, returning -1, 0 or +1.
type Comparator interface {
	Compare(a, b string) int
}

// Func adapts a plain function to the Comparator interface.
type Func func(a, b string) int

// Compare calls f(a, b).
func (f Func) Compare(a, b string) int {
	return f(a, b)
}

// localeComparator wraps a collate.Collator. The collator keeps an internal
// buffer, so calls are serialized.
type localeComparator struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// Compare implements Comparator.
func (c *localeComparator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collator.CompareString(a, b)
}

// ForLanguage returns a case- and diacritic-insensitive comparator for tag.
func ForLanguage(tag language.Tag) Comparator {
	return &localeComparator{
		collator: collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
}

var (
	dutchOnce sync.Once
	dutch     Comparator
)

// Dutch returns the shared nl-NL base-sensitivity comparator.
func Dutch() Comparator {
	dutchOnce.Do(func() {
		dutch = ForLanguage(language.Dutch)
	})
	return dutch
}

// Lowercase compares the lower-cased strings byte-wise. It ignores case but
// not diacritics, and does not depend on any collation tables.
func Lowercase() Comparator {
	return Func(func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
}

// Default is the comparator used when callers do not pick one.
func Default() Comparator {
	return Dutch()
}
