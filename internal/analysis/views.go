package analysis

import (
	"math"
	"math/rand"
	"sort"

	"github.com/KaramelBytes/listing-insights/internal/table"
)

// Column names of the listing dataset. Lookup is spelling tolerant, so the
// Airbnb Open Data headers ("room type", "Construction year") resolve too.
const (
	ColHostName     = "host_name"
	ColVerified     = "host_identity_verified"
	ColGroup        = "neighbourhood_group"
	ColRoomType     = "room_type"
	ColPrice        = "price"
	ColReviews      = "number_of_reviews"
	ColHostListings = "calculated_host_listings_count"
	ColAvailability = "availability_365"
	ColConstruction = "Construction_year"
	ColServiceFee   = "service_fee"
)

// Share is a category with its row count and share of all rows.
type Share struct {
	Value   string
	Count   int
	Percent float64
}

// GroupMean is the mean of a numeric column within one group. Count is the
// number of numeric values averaged; Mean is NaN when Count is zero.
type GroupMean struct {
	Key   string
	Mean  float64
	Count int
}

// CrossMean is a GroupMean keyed by two columns.
type CrossMean struct {
	Group string
	Sub   string
	Mean  float64
	Count int
}

// HostCount is one row of the host ranking.
type HostCount struct {
	Host     string
	Listings float64
}

// PairCorr is a Pearson coefficient between two columns.
type PairCorr struct {
	A, B string
	R    float64
}

// ValueCounts counts non-empty values of col, most frequent first (ties by
// value). Percent is relative to every row of the table, missing included.
func ValueCounts(t *table.Table, col string) ([]Share, bool) {
	if !t.Has(col) {
		return nil, false
	}
	counts := map[string]int{}
	for _, v := range t.Strings(col) {
		if v == "" {
			continue
		}
		counts[v]++
	}
	out := make([]Share, 0, len(counts))
	for k, n := range counts {
		out = append(out, Share{Value: k, Count: n, Percent: float64(n) * 100 / float64(t.Len())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out, true
}

// RoomTypes is the room-type distribution.
func RoomTypes(t *table.Table) ([]Share, bool) { return ValueCounts(t, ColRoomType) }

// ListingsByGroup ranks neighbourhood groups by listing count.
func ListingsByGroup(t *table.Table) ([]Share, bool) { return ValueCounts(t, ColGroup) }

func groupMeans(keys []string, vals []float64) map[string]*GroupMean {
	acc := map[string]*GroupMean{}
	sums := map[string]float64{}
	for i, k := range keys {
		if k == "" {
			continue
		}
		g := acc[k]
		if g == nil {
			g = &GroupMean{Key: k}
			acc[k] = g
		}
		if math.IsNaN(vals[i]) {
			continue
		}
		g.Count++
		sums[k] += vals[i]
	}
	for k, g := range acc {
		if g.Count == 0 {
			g.Mean = math.NaN()
			continue
		}
		g.Mean = sums[k] / float64(g.Count)
	}
	return acc
}

// MeanByGroup averages val per distinct key, keys in ascending order.
func MeanByGroup(t *table.Table, key, val string) ([]GroupMean, bool) {
	if !t.Has(key, val) {
		return nil, false
	}
	acc := groupMeans(t.Strings(key), t.Floats(val))
	out := make([]GroupMean, 0, len(acc))
	for _, g := range acc {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, true
}

// MeanPriceByGroup ranks neighbourhood groups by mean price, highest first.
// Groups without any numeric price sort last.
func MeanPriceByGroup(t *table.Table) ([]GroupMean, bool) {
	out, ok := MeanByGroup(t, ColGroup, ColPrice)
	if !ok {
		return nil, false
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Mean, out[j].Mean
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		}
		return a > b
	})
	return out, true
}

// MeanByCross averages val per (a, b) pair sorted by a then b, keeping at
// most limit entries (limit <= 0 keeps all).
func MeanByCross(t *table.Table, a, b, val string, limit int) ([]CrossMean, bool) {
	if !t.Has(a, b, val) {
		return nil, false
	}
	as, bs := t.Strings(a), t.Strings(b)
	keys := make([]string, len(as))
	for i := range as {
		if as[i] == "" || bs[i] == "" {
			continue
		}
		keys[i] = as[i] + "\x00" + bs[i]
	}
	acc := groupMeans(keys, t.Floats(val))
	out := make([]CrossMean, 0, len(acc))
	for k, g := range acc {
		for i := 0; i < len(k); i++ {
			if k[i] == 0 {
				out = append(out, CrossMean{Group: k[:i], Sub: k[i+1:], Mean: g.Mean, Count: g.Count})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group == out[j].Group {
			return out[i].Sub < out[j].Sub
		}
		return out[i].Group < out[j].Group
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, true
}

// TopHosts returns the n rows with the largest host listing count. Ties keep
// table order; rows without a numeric count are excluded.
func TopHosts(t *table.Table, n int) ([]HostCount, bool) {
	if !t.Has(ColHostName, ColHostListings) {
		return nil, false
	}
	names := t.Strings(ColHostName)
	counts := t.Floats(ColHostListings)
	out := make([]HostCount, 0, len(counts))
	for i, c := range counts {
		if math.IsNaN(c) {
			continue
		}
		out = append(out, HostCount{Host: names[i], Listings: c})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Listings > out[j].Listings })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, true
}

// Correlation is the Pearson coefficient of two columns over rows where both
// are numeric.
func Correlation(t *table.Table, a, b string) (PairCorr, bool) {
	if !t.Has(a, b) {
		return PairCorr{}, false
	}
	return PairCorr{A: a, B: b, R: Pearson(t.Floats(a), t.Floats(b))}, true
}

// pairAcc accumulates the sums needed for an exact Pearson coefficient.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

func (pa *pairAcc) r() float64 {
	if pa.n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	r := (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Pearson computes the linear correlation of xs and ys using only the
// positions where both are numbers. NaN when fewer than two such pairs exist
// or either side has no variance.
func Pearson(xs, ys []float64) float64 {
	var pa pairAcc
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pa.add(xs[i], ys[i])
	}
	return pa.r()
}

// SampleXY draws up to n random rows without replacement and returns the x/y
// values of those where both are numeric.
func SampleXY(t *table.Table, x, y string, n int, rng *rand.Rand) (xs, ys []float64, ok bool) {
	if !t.Has(x, y) {
		return nil, nil, false
	}
	xv, yv := t.Floats(x), t.Floats(y)
	idx := rng.Perm(t.Len())
	if n > 0 && len(idx) > n {
		idx = idx[:n]
	}
	for _, i := range idx {
		if math.IsNaN(xv[i]) || math.IsNaN(yv[i]) {
			continue
		}
		xs = append(xs, xv[i])
		ys = append(ys, yv[i])
	}
	return xs, ys, true
}
