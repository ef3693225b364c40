package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/KaramelBytes/listing-insights/internal/table"
)

// DefaultEncodings is the order in which delimited text is decoded.
var DefaultEncodings = []string{"utf-8", "latin-1", "cp1252", "iso-8859-1", "utf-16"}

var (
	errGarbled   = errors.New("decoded text contains NUL or replacement characters")
	errNoHeader  = errors.New("no header row")
	errNoRows    = errors.New("no data rows")
	errDelimiter = errors.New("header did not split on delimiter")
)

func encodingFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Decode converts raw bytes to UTF-8 text using the named encoding. UTF-8 is
// strict and may carry a literal U+FFFD. Other decoders reject results with
// U+FFFD, and every decoder rejects NUL, so a wide-encoded file does not pass
// as single-byte text.
func Decode(data []byte, enc string) (string, error) {
	e, err := encodingFor(enc)
	if err != nil {
		return "", err
	}
	if e == unicode.UTF8BOM && !utf8.Valid(data) {
		return "", fmt.Errorf("decode %s: invalid byte sequence", enc)
	}
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	s := string(out)
	if strings.ContainsRune(s, 0) || (e != unicode.UTF8BOM && strings.ContainsRune(s, utf8.RuneError)) {
		return "", fmt.Errorf("decode %s: %w", enc, errGarbled)
	}
	return s, nil
}

// ReadDelimited decodes data with one encoding and parses it, first with a
// comma and then with a detected delimiter. It reports the delimiter used.
func ReadDelimited(name string, data []byte, enc string) (*table.Table, rune, error) {
	text, err := Decode(data, enc)
	if err != nil {
		return nil, 0, err
	}
	cols, rows, err := parseDelimited(text, ',')
	if err == nil {
		return table.New(name, cols, rows), ',', nil
	}
	delim := sniffDelimiter(name, text)
	cols, rows, err2 := parseDelimited(text, delim)
	if err2 != nil {
		return nil, 0, fmt.Errorf("%s: comma: %v; detected %q: %w", enc, err, delim, err2)
	}
	return table.New(name, cols, rows), delim, nil
}

// parseDelimited skips malformed rows instead of failing the whole read.
// Rows with more fields than the header count as malformed; short rows are
// padded by table.New.
func parseDelimited(text string, comma rune) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errNoHeader
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, nil, errNoHeader
	}
	if len(header) == 1 && strings.ContainsAny(firstLine(text), otherDelimiters(comma)) {
		return nil, nil, errDelimiter
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil, errNoRows
	}
	return header, rows, nil
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

func otherDelimiters(comma rune) string {
	var b strings.Builder
	for _, d := range delimiterCandidates {
		if d != comma {
			b.WriteRune(d)
		}
	}
	return b.String()
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// sniffDelimiter picks the candidate whose per-line count is most consistent
// over the first lines, preferring higher counts on ties.
func sniffDelimiter(name, text string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == 10 {
			break
		}
	}
	best, bestScore := ',', 0
	for _, d := range delimiterCandidates {
		if len(lines) == 0 {
			break
		}
		want := strings.Count(lines[0], string(d))
		if want == 0 {
			continue
		}
		consistent := 0
		for _, l := range lines {
			if strings.Count(l, string(d)) == want {
				consistent++
			}
		}
		if score := consistent*1000 + want; score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}
