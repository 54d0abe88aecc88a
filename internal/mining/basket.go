package mining

import (
	"github.com/elliotchance/orderedmap/v2"
)

// ItemSet is the set of distinct items observed on one day, kept in
// first-seen order.
type ItemSet struct {
	items *orderedmap.OrderedMap[string, struct{}]
}

func newItemSet() *ItemSet {
	return &ItemSet{items: orderedmap.NewOrderedMap[string, struct{}]()}
}

// Contains reports whether item was observed that day.
func (s *ItemSet) Contains(item string) bool {
	_, ok := s.items.Get(item)
	return ok
}

// Len returns the number of distinct items.
func (s *ItemSet) Len() int {
	return s.items.Len()
}

// Items returns the items in first-seen order.
func (s *ItemSet) Items() []string {
	out := make([]string, 0, s.items.Len())
	for el := s.items.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// DayBasket maps each day to the set of items observed on it.
//
// Days iterate in the order they first appeared in the observation sequence,
// not in calendar order. A basket is read-only once BuildBaskets returns.
type DayBasket struct {
	days *orderedmap.OrderedMap[Day, *ItemSet]
}

// BuildBaskets groups observations into day-keyed item sets.
func BuildBaskets(observations []Observation) *DayBasket {
	b := &DayBasket{days: orderedmap.NewOrderedMap[Day, *ItemSet]()}
	for _, obs := range observations {
		set, ok := b.days.Get(obs.Day)
		if !ok {
			set = newItemSet()
			b.days.Set(obs.Day, set)
		}
		set.items.Set(obs.Item, struct{}{})
	}
	return b
}

// Len returns the number of distinct days.
func (b *DayBasket) Len() int {
	return b.days.Len()
}

// Items returns the item set for day.
func (b *DayBasket) Items(day Day) (*ItemSet, bool) {
	return b.days.Get(day)
}

// Days returns the basket's days in construction order.
func (b *DayBasket) Days() []Day {
	out := make([]Day, 0, b.days.Len())
	for el := b.days.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// Each calls fn for every day in construction order until fn returns false.
func (b *DayBasket) Each(fn func(day Day, items *ItemSet) bool) {
	for el := b.days.Front(); el != nil; el = el.Next() {
		if !fn(el.Key, el.Value) {
			return
		}
	}
}
