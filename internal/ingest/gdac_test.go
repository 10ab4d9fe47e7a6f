package ingest

import (
	"strings"
	"testing"
	"time"
)

const sampleIndex = `# Title : Profile directory file of the Argo GDAC
# Date of update : 20240301120000
file,date,latitude,longitude,ocean,profiler_type,institution,date_update
aoml/13857/profiles/R13857_001.nc,19970729200300,0.267,-16.032,A,845,AO,20181011advance
aoml/13857/profiles/R13857_002.nc,19970809192112,0.072,-17.659,A,845,AO,20181011
coriolis/6902746/profiles/R6902746_001.nc,20170210120500,-33.512,151.301,P,844,IF,20170211
aoml/13858/profiles/R13858_001.nc,19970729,0.1,-15.9,A,845,AO,bad-date-skipped
aoml/13859/profiles/R13859_001.nc,19970801000000,99999.0,-15.9,A,845,AO,kept-without-fix
aoml/13860/profiles/R13860_001.nc,19970801000000,,,A,845,AO,kept-without-fix
short,line
`

func TestParseIndex(t *testing.T) {
	records, err := parseIndex(strings.NewReader(sampleIndex), 0)
	if err != nil {
		t.Fatalf("parseIndex: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("parsed %d records, want 5", len(records))
	}

	first := records[0]
	if first.FloatID != "13857" {
		t.Errorf("FloatID = %q, want 13857", first.FloatID)
	}
	wantDate := time.Date(1997, 7, 29, 20, 3, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", first.Date, wantDate)
	}
	if !first.HasFix || first.Lat != 0.267 || first.Lon != -16.032 {
		t.Errorf("fix = %+v, want (0.267, -16.032)", first)
	}

	// Out-of-range and empty coordinates keep the record but drop the fix.
	for _, i := range []int{3, 4} {
		if records[i].HasFix {
			t.Errorf("record %d (%s) has a fix, want none", i, records[i].FloatID)
		}
	}
}

func TestParseIndexLimit(t *testing.T) {
	records, err := parseIndex(strings.NewReader(sampleIndex), 2)
	if err != nil {
		t.Fatalf("parseIndex: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("parsed %d records, want 2", len(records))
	}
}

func TestFloatIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"aoml/13857/profiles/R13857_001.nc", "13857"},
		{"coriolis/6902746/profiles/R6902746_001.nc", "6902746"},
		{"justafile.nc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := floatIDFromPath(tt.path); got != tt.want {
			t.Errorf("floatIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
