package notes

import (
	"context"
	"strings"
	"testing"
)

func TestAuthenticityValidatorTags(t *testing.T) {
	tests := []struct {
		key    string
		status Status
		tags   []string
		reason string
	}{
		{"NF-10", StatusInvalid, []string{"REFUSED", "DATA_INCONSISTENCY"}, "Note carries disqualifying tags: REFUSED"},
		{"NF-11", StatusInvalid, []string{"UNRECOGNIZED", "INVALID_KEY"}, "Note carries disqualifying tags: UNRECOGNIZED"},
		{"NF-12", StatusValid, []string{"AUTHORIZED", "PROCESSED", "ACTIVE"}, ""},
		{"NF-1X", StatusValid, []string{"AUTHORIZED", "PROCESSED", "ACTIVE"}, ""},
		{"", StatusValid, []string{"AUTHORIZED", "PROCESSED", "ACTIVE"}, ""},
	}
	v := AuthenticityValidator{}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			note, err := v.Validate(context.Background(), tt.key, 123.45)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if note.Status != tt.status {
				t.Fatalf("status = %s, want %s", note.Status, tt.status)
			}
			if strings.Join(note.Tags, ",") != strings.Join(tt.tags, ",") {
				t.Fatalf("tags = %v, want %v", note.Tags, tt.tags)
			}
			if note.InvalidationReason != tt.reason {
				t.Fatalf("reason = %q, want %q", note.InvalidationReason, tt.reason)
			}
			if note.Value != 123.45 || note.Key != tt.key {
				t.Fatalf("declared value and key must pass through, got %+v", note)
			}
		})
	}
}

func TestDisqualifyingFoldsAccentsAndCase(t *testing.T) {
	tags := []string{"Não reconhecido", "recusado pela SEFAZ", "AUTORIZADA", "NAO RECONHECIDO", "refused"}
	got := Disqualifying(tags)
	want := []string{"Não reconhecido", "recusado pela SEFAZ", "NAO RECONHECIDO", "refused"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Disqualifying() = %v, want %v", got, want)
	}

	note := Classify("NF", 1, tags)
	if note.InvalidationReason != "Note carries disqualifying tags: Não reconhecido, recusado pela SEFAZ, NAO RECONHECIDO, refused" {
		t.Fatalf("unexpected reason %q", note.InvalidationReason)
	}
}

func TestLookupTagsReturnsCopies(t *testing.T) {
	tags := lookupTags("NF-2")
	tags[0] = "MUTATED"
	if authorizedTags[0] != "AUTHORIZED" {
		t.Fatalf("lookup must not share the package tag slices")
	}
}
