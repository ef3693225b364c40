package loader

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/KaramelBytes/listing-insights/internal/table"
)

const (
	// DefaultSampleRows is the size of the synthetic fallback dataset.
	DefaultSampleRows = 1000
	// DefaultSeed makes the synthetic dataset reproducible across runs.
	DefaultSeed int64 = 42
	// ServiceFeeRate is the share of the nightly price charged as service fee.
	ServiceFeeRate = 0.15
)

// SyntheticColumns is the column layout of the generated dataset.
var SyntheticColumns = []string{
	"id", "NAME", "host_id", "host_name", "host_identity_verified",
	"neighbourhood_group", "neighbourhood", "room_type", "price",
	"minimum_nights", "number_of_reviews", "calculated_host_listings_count",
	"availability_365", "Construction_year", "service_fee",
}

type weighted struct {
	values  []string
	weights []float64
}

func (w weighted) pick(rng *rand.Rand) string {
	x := rng.Float64()
	acc := 0.0
	for i, p := range w.weights {
		acc += p
		if x < acc {
			return w.values[i]
		}
	}
	return w.values[len(w.values)-1]
}

var (
	hostNames     = []string{"John", "Mary", "David", "Sarah", "Mike"}
	neighbourhood = []string{"Midtown", "SoHo", "Chelsea", "Williamsburg", "Astoria"}
	verification  = weighted{[]string{"verified", "unconfirmed"}, []float64{0.7, 0.3}}
	boroughs      = weighted{
		[]string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"},
		[]float64{0.4, 0.3, 0.15, 0.1, 0.05},
	}
	roomTypes = weighted{
		[]string{"Entire home/apt", "Private room", "Shared room"},
		[]float64{0.6, 0.35, 0.05},
	}
	minNights = weighted{[]string{"1", "2", "3", "7", "30"}, []float64{0.5, 0.2, 0.15, 0.1, 0.05}}
)

// Synthesize generates n listing rows from seed. The same seed always yields
// the same table; service_fee is ServiceFeeRate times price on every row.
func Synthesize(n int, seed int64) *table.Table {
	if n <= 0 {
		n = DefaultSampleRows
	}
	rng := rand.New(rand.NewSource(seed))
	between := func(lo, hi int) string { return strconv.Itoa(lo + rng.Intn(hi-lo)) }

	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		price := 50 + rng.Intn(450)
		rows[i] = []string{
			strconv.Itoa(1000000 + i),
			fmt.Sprintf("Property %d", i),
			between(100000, 999999),
			hostNames[rng.Intn(len(hostNames))],
			verification.pick(rng),
			boroughs.pick(rng),
			neighbourhood[rng.Intn(len(neighbourhood))],
			roomTypes.pick(rng),
			strconv.Itoa(price),
			minNights.pick(rng),
			between(0, 300),
			between(1, 20),
			between(0, 365),
			between(1980, 2023),
			strconv.FormatFloat(float64(price)*ServiceFeeRate, 'g', -1, 64),
		}
	}
	return table.New(fmt.Sprintf("synthetic(seed=%d)", seed), SyntheticColumns, rows)
}
