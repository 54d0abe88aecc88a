package mining

import (
	"github.com/elliotchance/orderedmap/v2"
)

// FrequentItemSet holds the items whose distinct-day support reached the
// threshold, paired with that support. Items keep the order in which they
// were first seen while scanning the basket.
type FrequentItemSet struct {
	support *orderedmap.OrderedMap[string, int]
}

// FilterFrequent counts, for every item, the number of distinct days whose
// basket contains it and keeps the items with a count of at least
// minSupport. Items below the threshold are dropped silently.
func FilterFrequent(basket *DayBasket, minSupport int) *FrequentItemSet {
	counts := orderedmap.NewOrderedMap[string, int]()
	basket.Each(func(_ Day, items *ItemSet) bool {
		for el := items.items.Front(); el != nil; el = el.Next() {
			n, _ := counts.Get(el.Key)
			counts.Set(el.Key, n+1)
		}
		return true
	})

	frequent := orderedmap.NewOrderedMap[string, int]()
	for el := counts.Front(); el != nil; el = el.Next() {
		if el.Value >= minSupport {
			frequent.Set(el.Key, el.Value)
		}
	}
	return &FrequentItemSet{support: frequent}
}

// Len returns the number of frequent items.
func (f *FrequentItemSet) Len() int {
	return f.support.Len()
}

// Contains reports whether item is frequent.
func (f *FrequentItemSet) Contains(item string) bool {
	_, ok := f.support.Get(item)
	return ok
}

// Support returns the distinct-day count of a frequent item.
func (f *FrequentItemSet) Support(item string) (int, bool) {
	return f.support.Get(item)
}

// Items returns the frequent items in first-seen order.
func (f *FrequentItemSet) Items() []string {
	out := make([]string, 0, f.support.Len())
	for el := f.support.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}
