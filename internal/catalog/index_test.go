package catalog

import (
	"errors"
	"strings"
	"testing"

	"tickerize/internal"
)

func lowerNormalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func TestBuildIndex(t *testing.T) {
	entries := []internal.ReferenceEntry{
		{Name: "Infosys Limited", Ticker: "INFY"},
		{Name: "No Ticker Corp", Ticker: ""},
		{Name: "", Ticker: "NONE"},
		{Name: "Tata Motors", Ticker: "TTMT"},
		{Name: "infosys limited", Ticker: "DUPE"},
	}

	idx, err := BuildIndex(entries, lowerNormalize)
	if err != nil {
		t.Fatal(err)
	}

	if idx.Len() != 2 {
		t.Fatalf("len = %d, want 2", idx.Len())
	}
	if idx.Entries()[0].Ticker != "INFY" || idx.Entries()[1].Ticker != "TTMT" {
		t.Fatalf("iteration order broken: %+v", idx.Entries())
	}

	entry, ok := idx.Exact("infosys limited")
	if !ok || entry.Ticker != "INFY" {
		t.Fatalf("exact lookup: %+v ok=%v", entry, ok)
	}
}

func TestBuildIndexInvalidReference(t *testing.T) {
	cases := [][]internal.ReferenceEntry{
		nil,
		{},
		{{Name: "No Ticker Corp", Ticker: ""}},
		{{Name: "   ", Ticker: "X"}},
	}
	for _, entries := range cases {
		if _, err := BuildIndex(entries, lowerNormalize); !errors.Is(err, ErrInvalidReference) {
			t.Fatalf("expected ErrInvalidReference for %+v, got %v", entries, err)
		}
	}
}

func TestBuildIndexVersions(t *testing.T) {
	entries := []internal.ReferenceEntry{{Name: "Infosys", Ticker: "INFY"}}

	first, err := BuildIndex(entries, lowerNormalize)
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildIndex(entries, lowerNormalize)
	if err != nil {
		t.Fatal(err)
	}
	if first.Version() == second.Version() {
		t.Fatal("rebuilt index must have a distinct version")
	}
}
