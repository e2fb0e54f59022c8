package catalog

import (
	"strings"
	"testing"
)

const sampleReferenceCSV = `Default,Country,Bloom Ticker
Infosys Limited,IN,INFY
,IN,GHOST
Tata Motors Limited,IN,TTMT
No Ticker Corp,IN,
`

func TestReadReferenceCSV(t *testing.T) {
	entries, err := ReadReferenceCSV(strings.NewReader(sampleReferenceCSV), "Default", "Bloom Ticker")
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}
	if entries[0].Name != "Infosys Limited" || entries[0].Ticker != "INFY" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Ticker != "TTMT" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestReadReferenceCSVMissingColumns(t *testing.T) {
	_, err := ReadReferenceCSV(strings.NewReader("Name,Code\nInfosys,INFY\n"), "Default", "Bloom Ticker")
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
}
