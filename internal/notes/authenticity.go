package notes

import (
	"context"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	refusedTags      = []string{"REFUSED", "DATA_INCONSISTENCY"}
	unrecognizedTags = []string{"UNRECOGNIZED", "INVALID_KEY"}
	authorizedTags   = []string{"AUTHORIZED", "PROCESSED", "ACTIVE"}
)

// disqualifying is matched against accent-folded, upper-cased tags, so
// "Não reconhecido" and "NAO RECONHECIDO" both hit.
var disqualifying = []string{"REFUSED", "RECUSADO", "UNRECOGNIZED", "NAO RECONHECIDO"}

// AuthenticityValidator simulates the note authenticity lookup. The outcome
// depends only on the last character of the key.
type AuthenticityValidator struct {
	Latency time.Duration
}

func NewAuthenticityValidator(cfg Config) AuthenticityValidator {
	return AuthenticityValidator{Latency: cfg.ValidationLatency}
}

func (v AuthenticityValidator) Validate(ctx context.Context, key string, declared float64) (FiscalNote, error) {
	if err := wait(ctx, v.Latency); err != nil {
		return FiscalNote{}, err
	}
	return Classify(key, declared, lookupTags(key)), nil
}

func lookupTags(key string) []string {
	var tags []string
	switch {
	case strings.HasSuffix(key, "0"):
		tags = refusedTags
	case strings.HasSuffix(key, "1"):
		tags = unrecognizedTags
	default:
		tags = authorizedTags
	}
	return append([]string(nil), tags...)
}

// Classify builds the note for a set of tags returned by an authenticity lookup.
func Classify(key string, value float64, tags []string) FiscalNote {
	note := FiscalNote{Key: key, Value: value, Status: StatusValid, Tags: tags}
	if bad := Disqualifying(tags); len(bad) > 0 {
		note.Status = StatusInvalid
		note.InvalidationReason = "Note carries disqualifying tags: " + strings.Join(bad, ", ")
	}
	return note
}

// Disqualifying returns the tags that invalidate a note, in their original spelling.
func Disqualifying(tags []string) []string {
	var bad []string
	for _, tag := range tags {
		folded := fold(tag)
		for _, d := range disqualifying {
			if strings.Contains(folded, d) {
				bad = append(bad, tag)
				break
			}
		}
	}
	return bad
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
