package mining

import "strings"

// Pattern is an ordered, duplicate-free sequence of item identifiers.
type Pattern []string

// Clone returns a copy of p backed by its own storage.
func (p Pattern) Clone() Pattern {
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Key returns a string that identifies p's content and order.
func (p Pattern) Key() string {
	return strings.Join(p, "\x1f")
}

func (p Pattern) String() string {
	return "[" + strings.Join(p, ", ") + "]"
}

// PatternCollection accumulates accepted patterns. Every stored pattern is a
// private copy, so callers may mutate what they pass in or get back.
type PatternCollection struct {
	patterns []Pattern
}

// NewPatternCollection returns an empty collection.
func NewPatternCollection() *PatternCollection {
	return &PatternCollection{}
}

// Add stores a copy of p.
func (c *PatternCollection) Add(p Pattern) {
	c.patterns = append(c.patterns, p.Clone())
}

// Len returns the number of stored patterns.
func (c *PatternCollection) Len() int {
	return len(c.patterns)
}

// Patterns returns the stored patterns in acceptance order.
func (c *PatternCollection) Patterns() []Pattern {
	return c.patterns
}

// Keys returns the set of pattern keys, for order-insensitive comparison.
func (c *PatternCollection) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(c.patterns))
	for _, p := range c.patterns {
		keys[p.Key()] = struct{}{}
	}
	return keys
}
