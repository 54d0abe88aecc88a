package mining

import (
	"github.com/dbsmedya/lppminer/internal/logger"
)

func obs(item string, y, m, d int) Observation {
	return Observation{Item: item, Day: Day{Year: y, Month: m, Day: d}}
}

// retailScenario: A on three days a month apart, B on two days four days
// apart. Both reach a support of 2; only A is periodic at min_period 20.
func retailScenario() []Observation {
	return []Observation{
		obs("A", 2011, 1, 1),
		obs("B", 2011, 1, 1),
		obs("B", 2011, 1, 5),
		obs("A", 2011, 2, 1),
		obs("A", 2011, 3, 1),
	}
}

// periodicTrio: X, Y and Z are each seen on the same three days, 60 ordinals apart.
func periodicTrio() []Observation {
	var out []Observation
	for _, m := range []int{1, 3, 5} {
		for _, item := range []string{"X", "Y", "Z"} {
			out = append(out, obs(item, 2011, m, 10))
		}
	}
	return out
}

func keysOf(patterns []Pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.String())
	}
	return out
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
