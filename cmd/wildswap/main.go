// Command wildswap replaces the species of wild encounter tables with picks from
// a level-bucketed replacement catalog.
//
// Usage:
//
//	wildswap [flags] <input-file> <output-file>
//	wildswap src/data/wild_encounters.json src/data/wild_encounters_cute.json
//	wildswap --seed 7 --catalog cute.yaml --ledger runs.db in.json.xz out.json.xz
//	wildswap --ledger runs.db runs [run-id]
//	wildswap --catalog cute.yaml show-catalog
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/wildswap/core/catalog"
	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/internal/logging"
	"github.com/FocuswithJustin/wildswap/internal/swap"
	"github.com/FocuswithJustin/wildswap/internal/validation"
)

const version = "0.2.0"

// CLI defines the command-line interface for wildswap.
type CLI struct {
	// Global flags
	Catalog   string           `help:"Replacement catalog (.yaml/.yml, or catalog text)" type:"path" env:"WILDSWAP_CATALOG"`
	Ledger    string           `help:"SQLite database of recorded runs" type:"path" env:"WILDSWAP_LEDGER"`
	Seed      string           `help:"Integer seed for reproducible selections" env:"WILDSWAP_SEED"`
	SoftCap   int              `name:"soft-cap" help:"Selections before a candidate stops being preferred" default:"3" env:"WILDSWAP_SOFT_CAP"`
	LogLevel  string           `name:"log-level" help:"Log level" default:"warn" enum:"debug,info,warn,error" env:"WILDSWAP_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format" default:"text" enum:"text,json" env:"WILDSWAP_LOG_FORMAT"`
	Verbose   bool             `short:"v" help:"Print digests and rewrite counters"`
	Version   kong.VersionFlag `help:"Print version information"`

	Swap        SwapCmd        `cmd:"" default:"withargs" help:"Replace wild encounter species (default command)"`
	Runs        RunsCmd        `cmd:"" help:"List runs recorded in the --ledger database"`
	ShowCatalog ShowCatalogCmd `cmd:"" name:"show-catalog" help:"Validate and print the replacement catalog"`
}

// runEnv carries the process context and output stream into command Run methods.
type runEnv struct {
	ctx    context.Context
	stdout io.Writer
}

// Validate is called by kong after parsing.
func (c *CLI) Validate() error {
	if c.SoftCap < 1 {
		return fmt.Errorf("--soft-cap must be at least 1, got %d", c.SoftCap)
	}
	if _, err := c.seed(); err != nil {
		return err
	}
	return nil
}

func (c *CLI) seed() (*int64, error) {
	if strings.TrimSpace(c.Seed) == "" {
		return nil, nil
	}
	s, err := strconv.ParseInt(strings.TrimSpace(c.Seed), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("--seed must be an integer, got %q", c.Seed)
	}
	return &s, nil
}

func (c *CLI) initLogging() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// loadCatalog returns the --catalog file, or the builtin catalog when unset.
func (c *CLI) loadCatalog() (*catalog.Catalog, string, error) {
	if c.Catalog == "" {
		return catalog.Default(), "builtin", nil
	}
	cat, err := catalog.Load(c.Catalog)
	if err != nil {
		return nil, "", err
	}
	return cat, c.Catalog, nil
}

// SwapCmd rewrites one encounter document.
type SwapCmd struct {
	Input  string `arg:"" name:"input-file" help:"Encounter document to read (.json, .json.xz, .json.gz)"`
	Output string `arg:"" name:"output-file" help:"Where to write the rewritten document"`
}

// Run performs the rewrite and prints the usage summary.
func (c *SwapCmd) Run(cli *CLI, env *runEnv) error {
	if err := validation.ValidatePath(c.Input); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validation.ValidatePath(c.Output); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	cat, _, err := cli.loadCatalog()
	if err != nil {
		return err
	}
	seed, err := cli.seed()
	if err != nil {
		return err
	}

	res, err := swap.Run(env.ctx, swap.Options{
		InputPath:  c.Input,
		OutputPath: c.Output,
		Catalog:    cat,
		Seed:       seed,
		SoftCap:    cli.SoftCap,
		Out:        env.stdout,
	})
	if err != nil {
		return err
	}

	if cli.Verbose {
		swap.WriteDetails(env.stdout, res)
	}
	swap.WriteSummary(env.stdout, res.Usage)

	if cli.Ledger != "" {
		if err := swap.Record(env.ctx, cli.Ledger, res); err != nil {
			return errors.Wrap(err, "record run")
		}
		fmt.Fprintf(env.stdout, "Recorded run %s in %s\n", res.RunID, cli.Ledger)
	}
	return nil
}

// RunsCmd prints the run ledger.
type RunsCmd struct {
	RunID string `arg:"" optional:"" name:"run-id" help:"Show one run and its usage summary"`
}

// Run lists recorded runs, or one run in detail.
func (c *RunsCmd) Run(cli *CLI, env *runEnv) error {
	if cli.Ledger == "" {
		return errors.NewUsage("runs requires --ledger PATH", nil)
	}
	return swap.History(env.ctx, env.stdout, cli.Ledger, c.RunID)
}

// ShowCatalogCmd prints the effective catalog.
type ShowCatalogCmd struct{}

// Run loads and validates the catalog, then prints it.
func (c *ShowCatalogCmd) Run(cli *CLI, env *runEnv) error {
	cat, source, err := cli.loadCatalog()
	if err != nil {
		return err
	}
	swap.WriteCatalog(env.stdout, source, cat)
	return nil
}

func printUsage(w io.Writer, err *errors.UsageError) {
	fmt.Fprintf(w, "wildswap: %s\n", err.Message)
	fmt.Fprintln(w, "Usage: wildswap [flags] <input-file> <output-file>")
	fmt.Fprintln(w, "       wildswap --ledger PATH runs [run-id]")
	fmt.Fprintln(w, "       wildswap [--catalog PATH] show-catalog")
	fmt.Fprintln(w, "Example: wildswap src/data/wild_encounters.json src/data/wild_encounters_cute.json")
	fmt.Fprintln(w, "Run 'wildswap --help' for the list of flags.")
}

// run parses args and executes the command, returning the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exited, exitCode := false, 0

	parser, err := kong.New(&cli,
		kong.Name("wildswap"),
		kong.Description("Replace wild encounter species with picks from a level-bucketed catalog."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited, exitCode = true, code
		}),
		kong.Vars{"version": version},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exited {
		// --help and --version exit through the hook.
		return exitCode
	}
	if err != nil {
		printUsage(stderr, errors.NewUsage(err.Error(), err))
		return 1
	}

	if err := cli.initLogging(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := kctx.Run(&cli, &runEnv{ctx: context.Background(), stdout: stdout}); err != nil {
		var usageErr *errors.UsageError
		if errors.As(err, &usageErr) {
			printUsage(stderr, usageErr)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
