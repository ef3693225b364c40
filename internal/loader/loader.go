package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/listing-insights/internal/table"
)

// DefaultCandidates is the ordered list of sources tried before synthesis.
var DefaultCandidates = []string{
	"Airbnb_Open_Data.csv",
	"/content/Airbnb_Open_Data.csv",
	"1730285881-AirbnbOpenData.xlsx",
	"/content/1730285881-AirbnbOpenData.xlsx",
}

// Options controls source resolution.
type Options struct {
	// Candidates are tried in order; the first readable, non-empty one wins.
	Candidates []string
	// Encodings applies to delimited text, in priority order.
	Encodings []string
	// Query is run against postgres:// candidates.
	Query string
	// SampleRows and Seed shape the synthetic fallback.
	SampleRows int
	Seed       int64
	Logger     *zerolog.Logger
}

// DefaultOptions returns the built-in candidate chain and fallback settings.
func DefaultOptions() Options {
	return Options{
		Candidates: append([]string(nil), DefaultCandidates...),
		Encodings:  append([]string(nil), DefaultEncodings...),
		Query:      DefaultQuery,
		SampleRows: DefaultSampleRows,
		Seed:       DefaultSeed,
	}
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Attempt tries to produce a table. Any error means "try the next option".
type Attempt func() (*table.Table, error)

var errEmpty = errors.New("source produced an empty table")

// FirstOf runs attempts left to right and returns the first non-empty table.
// Failures are passed to onFail (may be nil) and never surface; when every
// attempt fails the fallback result is returned.
func FirstOf(attempts []Attempt, fallback func() *table.Table, onFail func(i int, err error)) *table.Table {
	for i, a := range attempts {
		t, err := a()
		if err == nil && (t == nil || t.Len() == 0) {
			err = errEmpty
		}
		if err != nil {
			if onFail != nil {
				onFail(i, err)
			}
			continue
		}
		return t
	}
	return fallback()
}

// Reader resolves one kind of candidate source.
type Reader interface {
	CanRead(candidate string) bool
	Read(ctx context.Context, candidate string, opt Options) (*table.Table, error)
}

var registry []Reader

// Register adds a reader. Readers are consulted in registration order.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(sqlReader{})
	Register(xlsxReader{})
	Register(textReader{})
}

func readerFor(candidate string) Reader {
	for _, r := range registry {
		if r.CanRead(candidate) {
			return r
		}
	}
	return nil
}

// Load resolves exactly one table. It never fails: when no candidate yields
// rows, a synthetic dataset is generated.
func Load(ctx context.Context, opt Options) *table.Table {
	log := opt.logger()
	attempts := make([]Attempt, 0, len(opt.Candidates))
	for _, c := range opt.Candidates {
		c := c
		attempts = append(attempts, func() (*table.Table, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r := readerFor(c)
			if r == nil {
				return nil, fmt.Errorf("no reader for %s", c)
			}
			return r.Read(ctx, c, opt)
		})
	}
	return FirstOf(attempts,
		func() *table.Table {
			log.Info().Int("rows", sampleRows(opt)).Int64("seed", opt.Seed).Msg("Creating sample dataset for demonstration...")
			return Synthesize(sampleRows(opt), opt.Seed)
		},
		func(i int, err error) {
			log.Debug().Str("source", DisplayName(opt.Candidates[i])).Err(err).Msg("candidate skipped")
		})
}

func sampleRows(opt Options) int {
	if opt.SampleRows > 0 {
		return opt.SampleRows
	}
	return DefaultSampleRows
}

// DisplayName returns c with any database password masked.
func DisplayName(c string) string {
	if isSQLSource(c) {
		return redactDSN(c)
	}
	return c
}

type xlsxReader struct{}

func (xlsxReader) CanRead(c string) bool {
	return strings.HasSuffix(strings.ToLower(c), ".xlsx")
}

func (xlsxReader) Read(_ context.Context, c string, opt Options) (*table.Table, error) {
	t, err := ReadXLSX(c)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, errEmpty
	}
	opt.logger().Info().Str("source", c).Int("rows", t.Len()).Msg("✓ Loaded Excel file")
	return t, nil
}

type textReader struct{}

func (textReader) CanRead(string) bool { return true }

func (textReader) Read(_ context.Context, c string, opt Options) (*table.Table, error) {
	data, err := os.ReadFile(c)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	encs := opt.Encodings
	if len(encs) == 0 {
		encs = DefaultEncodings
	}
	var errs []error
	for _, enc := range encs {
		t, delim, err := ReadDelimited(c, data, enc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		opt.logger().Info().Str("source", c).Str("encoding", enc).Str("delimiter", string(delim)).
			Int("rows", t.Len()).Msg("✓ Loaded CSV")
		return t, nil
	}
	return nil, errors.Join(errs...)
}

type sqlReader struct{}

func (sqlReader) CanRead(c string) bool { return isSQLSource(c) }

func (sqlReader) Read(ctx context.Context, c string, opt Options) (*table.Table, error) {
	t, err := ReadSQL(ctx, c, opt.Query)
	if err != nil {
		return nil, err
	}
	opt.logger().Info().Str("source", redactDSN(c)).Int("rows", t.Len()).Msg("✓ Loaded PostgreSQL table")
	return t, nil
}
