package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	wserrors "github.com/FocuswithJustin/wildswap/core/errors"
)

func TestDefaultBucketsPartitionDomain(t *testing.T) {
	cat := Default()
	buckets := cat.Buckets()
	if len(buckets) != 5 {
		t.Fatalf("len(Buckets()) = %d, want 5", len(buckets))
	}

	for level := MinLevel; level <= MaxLevel; level++ {
		matches := 0
		for _, b := range buckets {
			if b.Contains(level) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("level %d is in %d buckets, want exactly 1", level, matches)
		}
		if got := cat.BucketFor(level); !got.Contains(level) {
			t.Errorf("BucketFor(%d) = %v, does not contain level", level, got)
		}
	}
}

func TestBucketFor(t *testing.T) {
	cat := Default()
	tests := []struct {
		level int
		want  Bucket
	}{
		{level: 1, want: Bucket{1, 5}},
		{level: 5, want: Bucket{1, 5}},
		{level: 6, want: Bucket{6, 15}},
		{level: 10, want: Bucket{6, 15}},
		{level: 15, want: Bucket{6, 15}},
		{level: 16, want: Bucket{16, 30}},
		{level: 30, want: Bucket{16, 30}},
		{level: 31, want: Bucket{31, 50}},
		{level: 50, want: Bucket{31, 50}},
		{level: 51, want: Bucket{51, 100}},
		{level: 100, want: Bucket{51, 100}},
		// clamped
		{level: 0, want: Bucket{1, 5}},
		{level: -42, want: Bucket{1, 5}},
		{level: math.MinInt, want: Bucket{1, 5}},
		{level: 101, want: Bucket{51, 100}},
		{level: math.MaxInt, want: Bucket{51, 100}},
	}

	for _, tt := range tests {
		if got := cat.BucketFor(tt.level); got != tt.want {
			t.Errorf("BucketFor(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestCandidatesFor(t *testing.T) {
	cat := Default()
	for _, b := range cat.Buckets() {
		if len(cat.CandidatesFor(b)) == 0 {
			t.Errorf("CandidatesFor(%v) is empty", b)
		}
	}

	low := cat.CandidatesFor(Bucket{1, 5})
	if len(low) != 12 || low[0] != "SPECIES_PIKACHU" {
		t.Errorf("CandidatesFor(1-5) = %v, want 12 candidates starting with SPECIES_PIKACHU", low)
	}
	if got := len(cat.CandidatesFor(Bucket{6, 15})); got != 17 {
		t.Errorf("len(CandidatesFor(6-15)) = %d, want 17", got)
	}
	if got := len(cat.CandidatesFor(Bucket{51, 100})); got != 22 {
		t.Errorf("len(CandidatesFor(51-100)) = %d, want 22", got)
	}

	if got := cat.CandidatesFor(Bucket{2, 3}); got != nil {
		t.Errorf("CandidatesFor(unknown) = %v, want nil", got)
	}

	low[0] = "MUTATED"
	if cat.CandidatesFor(Bucket{1, 5})[0] == "MUTATED" {
		t.Error("CandidatesFor() returned a slice aliasing catalog storage")
	}
}

func TestIdentifiers(t *testing.T) {
	ids := Default().Identifiers()
	if len(ids) != 22 {
		t.Errorf("len(Identifiers()) = %d, want 22", len(ids))
	}
	if !slices.IsSorted(ids) {
		t.Errorf("Identifiers() not sorted: %v", ids)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantMsg string
	}{
		{name: "empty", entries: nil},
		{
			name: "gap",
			entries: []Entry{
				{Bucket: Bucket{1, 5}, Candidates: []string{"A"}},
				{Bucket: Bucket{7, 100}, Candidates: []string{"B"}},
			},
			wantMsg: "gap before bucket, level 6 is not covered",
		},
		{
			name: "overlap",
			entries: []Entry{
				{Bucket: Bucket{1, 10}, Candidates: []string{"A"}},
				{Bucket: Bucket{5, 100}, Candidates: []string{"B"}},
			},
			wantMsg: "overlaps previous bucket",
		},
		{
			name:    "does not start at 1",
			entries: []Entry{{Bucket: Bucket{2, 100}, Candidates: []string{"A"}}},
			wantMsg: "first bucket must start at 1",
		},
		{
			name: "starts below 1",
			entries: []Entry{
				{Bucket: Bucket{0, 5}, Candidates: []string{"A"}},
				{Bucket: Bucket{6, 100}, Candidates: []string{"B"}},
			},
			wantMsg: "first bucket must start at 1",
		},
		{
			name:    "does not reach 100",
			entries: []Entry{{Bucket: Bucket{1, 99}, Candidates: []string{"A"}}},
			wantMsg: "last bucket must end at 100",
		},
		{
			name:    "inverted",
			entries: []Entry{{Bucket: Bucket{100, 1}, Candidates: []string{"A"}}},
			wantMsg: "min exceeds max",
		},
		{
			name:    "no candidates",
			entries: []Entry{{Bucket: Bucket{1, 100}}},
			wantMsg: "no candidates",
		},
		{
			name:    "blank candidate",
			entries: []Entry{{Bucket: Bucket{1, 100}, Candidates: []string{""}}},
			wantMsg: "empty candidate identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			if err == nil {
				t.Fatal("New() error = nil, want validation error")
			}
			var verr *wserrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("New() error = %T, want *ValidationError", err)
			}
			if tt.wantMsg != "" && verr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestNewSortsAndCopies(t *testing.T) {
	pool := []string{"B"}
	cat, err := New([]Entry{
		{Bucket: Bucket{11, 100}, Candidates: pool},
		{Bucket: Bucket{1, 10}, Candidates: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pool[0] = "Z"

	if got := cat.Buckets(); got[0] != (Bucket{1, 10}) || got[1] != (Bucket{11, 100}) {
		t.Errorf("Buckets() = %v, want sorted", got)
	}
	if got := cat.CandidatesFor(Bucket{11, 100}); got[0] != "B" {
		t.Errorf("CandidatesFor() = %v, catalog should not alias caller slices", got)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew() did not panic on invalid catalog")
		}
	}()
	MustNew(nil)
}

func TestParseText(t *testing.T) {
	src := `# two buckets
bucket 1-20 { SPECIES_EEVEE SPECIES_PIKACHU }
bucket 21-100 {
  SPECIES_SNORLAX,
  SPECIES_LAPRAS
}
`
	cat, err := Parse("cute.catalog", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cat.BucketFor(20); got != (Bucket{1, 20}) {
		t.Errorf("BucketFor(20) = %v, want 1-20", got)
	}
	want := []string{"SPECIES_SNORLAX", "SPECIES_LAPRAS"}
	if got := cat.CandidatesFor(Bucket{21, 100}); !slices.Equal(got, want) {
		t.Errorf("CandidatesFor(21-100) = %v, want %v", got, want)
	}
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{name: "syntax", src: "bucket 1 5 { A }", wantErr: wserrors.ErrInvalidInput},
		{name: "unterminated", src: "bucket 1-100 { A", wantErr: wserrors.ErrInvalidInput},
		{name: "gap", src: "bucket 1-5 { A } bucket 7-100 { B }", wantErr: wserrors.ErrInvalidInput},
		{name: "empty", src: "# nothing here\n", wantErr: wserrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.catalog", []byte(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	src := `buckets:
  - min: 1
    max: 50
    candidates: [SPECIES_EEVEE]
  - min: 51
    max: 100
    candidates:
      - SPECIES_SNORLAX
      - SPECIES_CHANSEY
`
	cat, err := Parse("cute.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cat.CandidatesFor(cat.BucketFor(77)); !slices.Equal(got, []string{"SPECIES_SNORLAX", "SPECIES_CHANSEY"}) {
		t.Errorf("CandidatesFor(BucketFor(77)) = %v", got)
	}

	if _, err := Parse("typo.yml", []byte("bucket: []\n")); !errors.Is(err, wserrors.ErrInvalidInput) {
		t.Errorf("Parse() unknown field error = %v, want ErrInvalidInput", err)
	}
	if _, err := Parse("empty.yml", nil); !errors.Is(err, wserrors.ErrInvalidInput) {
		t.Errorf("Parse() empty error = %v, want ErrInvalidInput", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.catalog")
	if err := os.WriteFile(path, []byte("bucket 1-100 { SPECIES_DITTO }"), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cat.CandidatesFor(cat.BucketFor(-5)); !slices.Equal(got, []string{"SPECIES_DITTO"}) {
		t.Errorf("CandidatesFor() = %v", got)
	}

	_, err = Load(filepath.Join(dir, "missing.catalog"))
	var ioErr *wserrors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("Load(missing) error = %v, want *IOError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}
