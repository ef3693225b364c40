package analysis

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/listing-insights/internal/table"
)

// Options controls the size of the ranked views.
type Options struct {
	// TopHosts limits the host ranking.
	TopHosts int
	// CrossLimit limits the neighbourhood x room type review view.
	CrossLimit int
}

// DefaultOptions returns the limits used by the printed report.
func DefaultOptions() Options {
	return Options{TopHosts: 10, CrossLimit: 10}
}

// Report holds every statistical view. A nil field means the view was skipped
// because a required column is absent.
type Report struct {
	Source   string
	Rows     int
	Columns  []string
	TopLimit int

	RoomTypes       []Share
	ListingsByGroup []Share
	PriceByGroup    []GroupMean
	YearVsPrice     *PairCorr
	TopHosts        []HostCount
	VerifiedReviews []GroupMean
	PriceVsFee      *PairCorr
	CrossReviews    []CrossMean
	HostsVsAvail    *PairCorr
}

// Analyze computes all views over t. Views are independent; a missing column
// only skips the views that need it.
func Analyze(t *table.Table, opt Options) *Report {
	r := &Report{Source: t.Name, Rows: t.Len(), Columns: t.Columns(), TopLimit: opt.TopHosts}
	if v, ok := RoomTypes(t); ok {
		r.RoomTypes = nonNil(v)
	}
	if v, ok := ListingsByGroup(t); ok {
		r.ListingsByGroup = nonNil(v)
	}
	if v, ok := MeanPriceByGroup(t); ok {
		r.PriceByGroup = nonNil(v)
	}
	if c, ok := Correlation(t, ColConstruction, ColPrice); ok {
		r.YearVsPrice = &c
	}
	if v, ok := TopHosts(t, opt.TopHosts); ok {
		r.TopHosts = nonNil(v)
	}
	if v, ok := MeanByGroup(t, ColVerified, ColReviews); ok {
		r.VerifiedReviews = nonNil(v)
	}
	if c, ok := Correlation(t, ColPrice, ColServiceFee); ok {
		r.PriceVsFee = &c
	}
	if v, ok := MeanByCross(t, ColGroup, ColRoomType, ColReviews, opt.CrossLimit); ok {
		r.CrossReviews = nonNil(v)
	}
	if c, ok := Correlation(t, ColHostListings, ColAvailability); ok {
		r.HostsVsAvail = &c
	}
	return r
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// WriteText prints the report in the order the views are numbered.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("\nAIRBNB HOTEL BOOKING ANALYSIS\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString(fmt.Sprintf("Dataset shape: (%d, %d)\n", r.Rows, len(r.Columns)))
	b.WriteString(fmt.Sprintf("Columns: [%s]\n", strings.Join(quoteAll(r.Columns), ", ")))

	b.WriteString("\n1. Property Types in Dataset:\n")
	if r.RoomTypes != nil {
		rows := make([][2]string, len(r.RoomTypes))
		for i, s := range r.RoomTypes {
			rows[i] = [2]string{s.Value, fmt.Sprintf("%d", s.Count)}
		}
		writeSeries(&b, rows)
		for _, s := range r.RoomTypes {
			b.WriteString(fmt.Sprintf("%s: %.1f%%\n", s.Value, s.Percent))
		}
	}

	b.WriteString("\n2. Neighbourhood Group with Highest Listings:\n")
	if r.ListingsByGroup != nil {
		rows := make([][2]string, len(r.ListingsByGroup))
		for i, s := range r.ListingsByGroup {
			rows[i] = [2]string{s.Value, fmt.Sprintf("%d", s.Count)}
		}
		writeSeries(&b, rows)
		if len(r.ListingsByGroup) > 0 {
			top := r.ListingsByGroup[0]
			b.WriteString(fmt.Sprintf("Answer: %s with %d listings\n", top.Value, top.Count))
		}
	}

	b.WriteString("\n3. Neighbourhood Group with Highest Average Prices:\n")
	if r.PriceByGroup != nil {
		rows := make([][2]string, len(r.PriceByGroup))
		for i, g := range r.PriceByGroup {
			rows[i] = [2]string{g.Key, formatFloat(g.Mean, 2)}
		}
		writeSeries(&b, rows)
		if len(r.PriceByGroup) > 0 && !math.IsNaN(r.PriceByGroup[0].Mean) {
			top := r.PriceByGroup[0]
			b.WriteString(fmt.Sprintf("Answer: %s with $%.2f average\n", top.Key, top.Mean))
		}
	}

	b.WriteString("\n4. Construction Year vs Price Relationship:\n")
	writeCorr(&b, r.YearVsPrice)

	b.WriteString(fmt.Sprintf("\n5. Top %d Hosts by Listing Count:\n", r.TopLimit))
	if r.TopHosts != nil {
		rows := make([][2]string, len(r.TopHosts))
		for i, h := range r.TopHosts {
			rows[i] = [2]string{h.Host, formatFloat(h.Listings, -1)}
		}
		writeSeries(&b, rows)
	}

	b.WriteString("\n6. Verified Hosts vs Reviews:\n")
	if r.VerifiedReviews != nil {
		rows := make([][2]string, len(r.VerifiedReviews))
		for i, g := range r.VerifiedReviews {
			rows[i] = [2]string{g.Key, formatFloat(g.Mean, 6)}
		}
		writeSeries(&b, rows)
	}

	b.WriteString("\n7. Price vs Service Fee Correlation:\n")
	writeCorr(&b, r.PriceVsFee)

	b.WriteString("\n8. Review Analysis by Neighbourhood and Room Type:\n")
	if r.CrossReviews != nil {
		rows := make([][2]string, len(r.CrossReviews))
		for i, c := range r.CrossReviews {
			rows[i] = [2]string{c.Group + "  " + c.Sub, formatFloat(c.Mean, 6)}
		}
		writeSeries(&b, rows)
	}

	b.WriteString("\n9. Host Listings vs Availability:\n")
	writeCorr(&b, r.HostsVsAvail)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCorr(b *strings.Builder, c *PairCorr) {
	if c == nil {
		return
	}
	b.WriteString(fmt.Sprintf("Correlation: %s\n", formatFloat(c.R, 3)))
}

// writeSeries prints label/value pairs with the values right-aligned.
func writeSeries(b *strings.Builder, rows [][2]string) {
	lw, vw := 0, 0
	for _, r := range rows {
		if n := len([]rune(r[0])); n > lw {
			lw = n
		}
		if len(r[1]) > vw {
			vw = len(r[1])
		}
	}
	for _, r := range rows {
		pad := lw - len([]rune(r[0]))
		b.WriteString(fmt.Sprintf("%s%s    %*s\n", r[0], strings.Repeat(" ", pad), vw, r[1]))
	}
}

// formatFloat renders NaN as "nan"; prec < 0 uses the shortest form.
func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if prec < 0 {
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "'" + s + "'"
	}
	return out
}
