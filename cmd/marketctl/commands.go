package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	redisv9 "github.com/redis/go-redis/v9"

	"market_backend/internal/app/config"
	"market_backend/internal/app/di"
	"market_backend/internal/feature/assets/domain/symbol"
	infradb "market_backend/internal/platform/db"
	infraredis "market_backend/internal/platform/redis"
)

var commands = []subcommands.Command{
	&refreshCmd{},
	&cleanupCmd{},
	&deleteCmd{},
	&seedCmd{},
	&migrateCmd{},
	&classifyCmd{out: os.Stdout},
}

// openUsecases は設定を読み込み、DB（と利用可能なら Redis）に接続してユースケースを組み立てます。
// Redis を通すのはサーバーの読み取りキャッシュを書き込み時に無効化するためです。
func openUsecases(ctx context.Context) (*di.Usecases, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := infradb.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	var rdb *redisv9.Client
	cleanup := func() {}
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err == nil {
		rdb = tmp
		cleanup = func() { _ = rdb.Close() }
	} else if !errors.Is(err, infraredis.ErrNotConfigured) {
		slog.Warn("Redis unavailable; the server cache will not be invalidated", "error", err)
	}

	provider, err := di.NewYahooClient()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return di.NewUsecases(cfg, db, rdb, provider), cleanup, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type refreshCmd struct {
	every time.Duration
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch quotes for the watchlist and update the asset table" }
func (*refreshCmd) Usage() string {
	return `marketctl refresh [-every <duration>]

  Runs the refresh job once, or repeatedly every <duration> until interrupted.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.every, "every", 0, "repeat the refresh at this interval (0 runs once)")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	uc, closeFn, err := openUsecases(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	for {
		report, err := uc.Refresh.Run(ctx)
		if err != nil {
			slog.Error("refresh failed", "error", err)
			if c.every <= 0 {
				return subcommands.ExitFailure
			}
		} else {
			slog.Info("refresh finished", "count", report.Count, "failed", len(report.FailedSymbols), "skipped", len(report.Skipped))
		}

		if c.every <= 0 {
			return subcommands.ExitSuccess
		}
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-time.After(c.every):
		}
	}
}

type cleanupCmd struct {
	apply bool
}

func (*cleanupCmd) Name() string     { return "cleanup" }
func (*cleanupCmd) Synopsis() string { return "find (and optionally delete) duplicate asset rows" }
func (*cleanupCmd) Usage() string {
	return `marketctl cleanup [-apply]

  Prints the dedup plan. With -apply, deletes duplicates and fixes stored categories.
`
}

func (c *cleanupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.apply, "apply", false, "apply the plan instead of printing it")
}

func (c *cleanupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	uc, closeFn, err := openUsecases(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if !c.apply {
		plan, err := uc.Maintenance.PlanCleanup(ctx)
		if err != nil {
			return fail(err)
		}
		printJSON(os.Stdout, plan)
		return subcommands.ExitSuccess
	}
	res, err := uc.Maintenance.ApplyCleanup(ctx)
	if err != nil {
		return fail(err)
	}
	printJSON(os.Stdout, res)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	symbol string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete one asset row by symbol" }
func (*deleteCmd) Usage() string {
	return `marketctl delete -symbol <symbol>
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "vendor-format symbol to delete, e.g. BTC-USD")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.symbol) == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}
	uc, closeFn, err := openUsecases(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	if err := uc.Maintenance.DeleteBySymbol(ctx, c.symbol); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "insert the default watchlist" }
func (*seedCmd) Usage() string {
	return `marketctl seed

  Inserts the default watchlist symbols. Existing codes are left untouched.
`
}
func (*seedCmd) SetFlags(*flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	uc, closeFn, err := openUsecases(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	n, err := uc.Watchlist.SeedDefaults(ctx)
	if err != nil {
		return fail(err)
	}
	slog.Info("watchlist seeded", "inserted", n)
	return subcommands.ExitSuccess
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the database tables" }
func (*migrateCmd) Usage() string {
	return `marketctl migrate
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	cfg.DB.Migrate = true
	if _, err := infradb.Open(cfg.DB); err != nil {
		return fail(err)
	}
	slog.Info("migration finished", "driver", cfg.DB.Driver)
	return subcommands.ExitSuccess
}

// classifyCmd は DB にも外部APIにも触れません。
type classifyCmd struct {
	out io.Writer
}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "show category, quote and chart symbols for codes" }
func (*classifyCmd) Usage() string {
	return `marketctl classify <code>...

  Prints one line per code: code, category, quote symbol, chart symbol.
`
}
func (*classifyCmd) SetFlags(*flag.FlagSet) {}

func (c *classifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one code is required")
		return subcommands.ExitUsageError
	}
	tables := symbol.DefaultTables()
	classifier := symbol.NewClassifier(tables)
	formatter := symbol.NewFormatter(tables)

	for _, code := range f.Args() {
		cat := classifier.Classify(code)
		qs := formatter.ToQuoteFormat(code, cat)
		fmt.Fprintf(c.out, "%s\t%s\t%s\t%s\n", code, cat, qs, formatter.ToChartFormat(qs, cat))
	}
	return subcommands.ExitSuccess
}
