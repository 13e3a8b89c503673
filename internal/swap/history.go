package swap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/FocuswithJustin/wildswap/core/catalog"
	"github.com/FocuswithJustin/wildswap/core/digest"
	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/core/ledger"
)

// History prints the runs recorded in the ledger at path, oldest first. With a
// non-empty runID it prints that run and its usage summary instead.
func History(ctx context.Context, w io.Writer, path, runID string) error {
	// Open would create an empty database; a missing ledger is an error here.
	if _, err := os.Stat(path); err != nil {
		return errors.NewIO("open ledger", path, err)
	}
	l, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Runs(ctx)
	if err != nil {
		return err
	}

	if runID == "" {
		writeRunList(w, path, runs)
		return nil
	}

	for _, run := range runs {
		if run.ID != runID {
			continue
		}
		usage, err := l.Usage(ctx, run.ID)
		if err != nil {
			return err
		}
		writeRun(w, run)
		WriteSummary(w, usage)
		return nil
	}
	return errors.NewValidation("run id", fmt.Sprintf("no run %s in %s", runID, path))
}

func writeRunList(w io.Writer, path string, runs []ledger.Run) {
	fmt.Fprintf(w, "Ledger: %s (%s driver, %s)\n", path, ledger.DriverType(), ledger.DriverPackage())
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %s -> %s  replaced %d  %s -> %s\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.InputPath,
			run.OutputPath,
			run.Replaced,
			digest.Digest{BLAKE3: run.InputBLAKE3}.Short(),
			digest.Digest{BLAKE3: run.OutputBLAKE3}.Short(),
		)
	}
}

func writeRun(w io.Writer, run ledger.Run) {
	seed := "none"
	if run.Seed != nil {
		seed = fmt.Sprintf("%d", *run.Seed)
	}
	fmt.Fprintf(w, "Run: %s\n", run.ID)
	fmt.Fprintf(w, "  Started: %s\n", run.StartedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "  Finished: %s\n", run.FinishedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "  Input: %s (BLAKE3 %s)\n", run.InputPath, run.InputBLAKE3)
	fmt.Fprintf(w, "  Output: %s (BLAKE3 %s)\n", run.OutputPath, run.OutputBLAKE3)
	fmt.Fprintf(w, "  Seed: %s\n", seed)
	fmt.Fprintf(w, "  Soft cap: %d\n", run.SoftCap)
	fmt.Fprintf(w, "  Replaced: %d\n", run.Replaced)
}

// WriteCatalog prints every bucket of cat with its candidates, followed by the
// number of distinct identifiers. source names where cat came from.
func WriteCatalog(w io.Writer, source string, cat *catalog.Catalog) {
	fmt.Fprintf(w, "Catalog: %s\n", source)
	for _, b := range cat.Buckets() {
		candidates := cat.CandidatesFor(b)
		fmt.Fprintf(w, "  %s: %d candidates\n", b, len(candidates))
		for _, id := range candidates {
			fmt.Fprintf(w, "    %s\n", id)
		}
	}
	fmt.Fprintf(w, "Distinct identifiers: %d\n", len(cat.Identifiers()))
}
