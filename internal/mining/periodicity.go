package mining

// Verdict is the outcome of a periodicity check for one item.
type Verdict struct {
	Periodic       bool
	QualifyingGaps int
}

// CheckPeriodicity scans the basket's days in construction order and
// measures the ordinal gap between successive occurrences of item.
//
// The scan stops at the first gap shorter than minPeriod and reports the item
// as non-periodic. Every other gap counts as qualifying. An item seen on zero
// or one day is periodic with no qualifying gaps.
func CheckPeriodicity(item string, basket *DayBasket, minPeriod int) Verdict {
	v := Verdict{Periodic: true}
	seen := false
	last := 0

	basket.Each(func(day Day, items *ItemSet) bool {
		if !items.Contains(item) {
			return true
		}
		ord := day.Ordinal()
		if seen {
			if ord-last < minPeriod {
				v.Periodic = false
				return false
			}
			v.QualifyingGaps++
		}
		seen = true
		last = ord
		return true
	})
	return v
}
