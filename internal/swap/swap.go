// Package swap runs one end-to-end rewrite: load the encounter document,
// replace species, save it, and report what was chosen.
package swap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/FocuswithJustin/wildswap/core/catalog"
	"github.com/FocuswithJustin/wildswap/core/digest"
	"github.com/FocuswithJustin/wildswap/core/encounters"
	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/core/ledger"
	"github.com/FocuswithJustin/wildswap/core/selector"
	"github.com/FocuswithJustin/wildswap/core/tree"
	"github.com/FocuswithJustin/wildswap/internal/fileio"
	"github.com/FocuswithJustin/wildswap/internal/logging"
)

// Options configures a run.
type Options struct {
	InputPath  string
	OutputPath string
	// Catalog defaults to catalog.Default().
	Catalog *catalog.Catalog
	// Seed makes selections reproducible; nil uses an unseeded source.
	Seed *int64
	// SoftCap defaults to selector.DefaultSoftCap.
	SoftCap int
	// RunID defaults to a fresh ledger.NewRunID().
	RunID string
	// Out receives progress messages; nil discards them.
	Out io.Writer
}

// Result describes a completed run.
type Result struct {
	RunID      string
	InputPath  string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Input      digest.Digest
	Output     digest.Digest
	Seed       *int64
	SoftCap    int
	Stats      encounters.Stats
	Usage      []selector.Usage
}

// Run loads opts.InputPath, rewrites every recognized encounter slot and writes
// the result to opts.OutputPath. Nothing is written when loading or parsing
// fails.
func Run(ctx context.Context, opts Options) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	runID := opts.RunID
	if runID == "" {
		runID = ledger.NewRunID()
	}
	ctx = logging.WithRunID(ctx, runID)

	res := &Result{
		RunID:      runID,
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
		StartedAt:  time.Now(),
		Seed:       opts.Seed,
	}
	logging.RunStarted(ctx, opts.InputPath, opts.OutputPath)

	if err := fileio.CheckSupported(opts.OutputPath); err != nil {
		return nil, errors.NewIO("write", opts.OutputPath, err)
	}

	fmt.Fprintf(out, "Loading wild encounters from %s...\n", opts.InputPath)
	data, err := fileio.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}
	res.Input = digest.Of(data)

	root, err := tree.Parse(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.Path = opts.InputPath
		}
		return nil, err
	}

	fmt.Fprintln(out, "Processing encounters...")
	selOpts := selector.Options{SoftCap: opts.SoftCap}
	if opts.Seed != nil {
		selOpts.Rand = selector.SeededRand(*opts.Seed)
	}
	sel := selector.New(cat, selOpts)
	rw := encounters.NewRewriter(sel)
	rw.Rewrite(root)

	encoded, err := tree.Marshal(root)
	if err != nil {
		return nil, errors.Wrap(err, "serialize document")
	}

	fmt.Fprintf(out, "Saving updated encounters to %s...\n", opts.OutputPath)
	if err := fileio.WriteFile(opts.OutputPath, encoded); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Done! Wild encounters have been replaced.")

	res.Output = digest.Of(encoded)
	res.SoftCap = sel.SoftCap()
	res.Stats = rw.Stats()
	res.Usage = sel.Usage()
	res.FinishedAt = time.Now()
	logging.RunFinished(ctx, res.Stats.Replaced, res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

// WriteSummary prints one line per chosen identifier, sorted by identifier.
func WriteSummary(w io.Writer, usage []selector.Usage) {
	fmt.Fprintln(w, "Usage summary:")
	for _, u := range usage {
		fmt.Fprintf(w, "  %s: %d encounters\n", u.ID, u.Count)
	}
}

// WriteDetails prints the digests and rewrite counters of res.
func WriteDetails(w io.Writer, res *Result) {
	fmt.Fprintf(w, "Run: %s\n", res.RunID)
	fmt.Fprintf(w, "  Input BLAKE3: %s (%d bytes)\n", res.Input.BLAKE3, res.Input.SizeBytes)
	fmt.Fprintf(w, "  Output BLAKE3: %s (%d bytes)\n", res.Output.BLAKE3, res.Output.SizeBytes)
	fmt.Fprintf(w, "  Replaced: %d entries in %d slots (%d skipped)\n",
		res.Stats.Replaced, res.Stats.Slots, res.Stats.Skipped)
}

// LedgerRun converts res into a ledger record.
func (res *Result) LedgerRun() ledger.Run {
	return ledger.Run{
		ID:           res.RunID,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		InputPath:    res.InputPath,
		OutputPath:   res.OutputPath,
		InputBLAKE3:  res.Input.BLAKE3,
		OutputBLAKE3: res.Output.BLAKE3,
		Seed:         res.Seed,
		SoftCap:      res.SoftCap,
		Replaced:     res.Stats.Replaced,
		Usage:        res.Usage,
	}
}

// Record opens the ledger at path and stores res in it.
func Record(ctx context.Context, path string, res *Result) error {
	ctx = logging.WithRunID(ctx, res.RunID)
	l, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.Record(ctx, res.LedgerRun()); err != nil {
		return err
	}
	logging.LedgerRecorded(ctx, path, len(res.Usage))
	return nil
}
