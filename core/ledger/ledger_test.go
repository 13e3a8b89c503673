package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	wserrors "github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/core/selector"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	seed := int64(42)
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	first := Run{
		ID:           NewRunID(),
		StartedAt:    start,
		FinishedAt:   start.Add(250 * time.Millisecond),
		InputPath:    "wild_encounters.json",
		OutputPath:   "wild_encounters_cute.json",
		InputBLAKE3:  "aaaa",
		OutputBLAKE3: "bbbb",
		Seed:         &seed,
		SoftCap:      3,
		Replaced:     3,
		Usage: []selector.Usage{
			{ID: "SPECIES_EEVEE", Count: 2},
			{ID: "SPECIES_DITTO", Count: 1},
		},
	}
	second := Run{
		ID:         NewRunID(),
		StartedAt:  start.Add(time.Hour),
		FinishedAt: start.Add(time.Hour + time.Second),
		InputPath:  "in.json.xz",
		OutputPath: "out.json.xz",
		SoftCap:    3,
	}

	// Insert out of order; Runs sorts by start time.
	if err := l.Record(ctx, second); err != nil {
		t.Fatalf("Record(second) error = %v", err)
	}
	if err := l.Record(ctx, first); err != nil {
		t.Fatalf("Record(first) error = %v", err)
	}

	runs, err := l.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(Runs()) = %d, want 2", len(runs))
	}
	got := runs[0]
	if got.ID != first.ID || got.InputPath != first.InputPath || got.Replaced != 3 || got.OutputBLAKE3 != "bbbb" {
		t.Errorf("Runs()[0] = %+v, want %+v", got, first)
	}
	if !got.StartedAt.Equal(first.StartedAt) || !got.FinishedAt.Equal(first.FinishedAt) {
		t.Errorf("timestamps = %v..%v, want %v..%v", got.StartedAt, got.FinishedAt, first.StartedAt, first.FinishedAt)
	}
	if got.Seed == nil || *got.Seed != 42 {
		t.Errorf("Seed = %v, want 42", got.Seed)
	}
	if runs[1].Seed != nil {
		t.Errorf("unseeded run Seed = %v, want nil", *runs[1].Seed)
	}

	usage, err := l.Usage(ctx, first.ID)
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	want := []selector.Usage{{ID: "SPECIES_DITTO", Count: 1}, {ID: "SPECIES_EEVEE", Count: 2}}
	if len(usage) != len(want) {
		t.Fatalf("Usage() = %v, want %v", usage, want)
	}
	for i := range want {
		if usage[i] != want[i] {
			t.Errorf("Usage()[%d] = %v, want %v", i, usage[i], want[i])
		}
	}

	if empty, err := l.Usage(ctx, second.ID); err != nil || len(empty) != 0 {
		t.Errorf("Usage(second) = %v, %v, want empty", empty, err)
	}
}

func TestRecordDuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	run := Run{ID: NewRunID(), StartedAt: time.Now(), FinishedAt: time.Now(), SoftCap: 3,
		Usage: []selector.Usage{{ID: "SPECIES_EEVEE", Count: 1}}}
	if err := l.Record(ctx, run); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	run.Usage = []selector.Usage{{ID: "SPECIES_LAPRAS", Count: 5}}
	err := l.Record(ctx, run)
	var ioErr *wserrors.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Record(duplicate) error = %v, want *IOError", err)
	}

	usage, _ := l.Usage(ctx, run.ID)
	if len(usage) != 1 || usage[0].ID != "SPECIES_EEVEE" {
		t.Errorf("Usage() after failed record = %v, want original row only", usage)
	}
}

func TestRecordRequiresID(t *testing.T) {
	l := openTestLedger(t)
	err := l.Record(context.Background(), Run{})
	if !errors.Is(err, wserrors.ErrInvalidInput) {
		t.Errorf("Record() error = %v, want ErrInvalidInput", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	l, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := l.Record(ctx, Run{ID: NewRunID(), StartedAt: time.Now(), FinishedAt: time.Now(), SoftCap: 3}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	l, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer l.Close()
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}
	runs, err := l.Runs(ctx)
	if err != nil || len(runs) != 1 {
		t.Errorf("Runs() = %v, %v, want one run", runs, err)
	}
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewRunID() = %q, not a UUID: %v", id, err)
	}
	if id == NewRunID() {
		t.Error("NewRunID() returned the same ID twice")
	}
}

func TestDriverInfo(t *testing.T) {
	switch DriverType() {
	case "purego":
		if DriverName() != "sqlite" {
			t.Errorf("DriverName() = %q, want sqlite", DriverName())
		}
	case "cgo":
		if DriverName() != "sqlite3" {
			t.Errorf("DriverName() = %q, want sqlite3", DriverName())
		}
	default:
		t.Errorf("DriverType() = %q", DriverType())
	}
	if DriverPackage() == "" {
		t.Error("DriverPackage() is empty")
	}
}
