package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/cephjournaltool/internal/config"
	"github.com/rzbill/cephjournaltool/internal/journal"
	rt "github.com/rzbill/cephjournaltool/internal/runtime"
	logpkg "github.com/rzbill/cephjournaltool/pkg/log"
)

// errUnhealthy signals journal inspect's exit code without forcing an
// os.Exit that would skip the runtime's deferred Close.
var errUnhealthy = errors.New("journal unhealthy")

// globalFlags holds the flags every subcommand threads into runtime.Open
// and ScanOptions, mirroring how flo's CLI threads --data-dir/--fsync.
type globalFlags struct {
	rank         uint32
	poolID       int64
	dataDir      string
	grpcAddr     string
	logLevel     string
	logFormat    string
	keepPayloads bool
}

func main() {
	cfg := cfgpkg.Default()
	cfgpkg.FromEnv(&cfg)

	flags := &globalFlags{
		rank:         cfg.Rank,
		poolID:       cfg.PoolID,
		logLevel:     cfg.LogLevel,
		logFormat:    cfg.LogFormat,
		keepPayloads: cfg.KeepPayloads,
	}

	rootCmd := &cobra.Command{
		Use:          "cephjournaltool",
		Short:        "Inspect, recover, and dump/undump a sharded metadata journal",
		Long:         "cephjournaltool scans a possibly-damaged journal stored as fixed-size objects, reconstructing its event stream and reporting health without ever aborting on bad data.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Uint32Var(&flags.rank, "rank", flags.rank, "MDS rank operated on")
	rootCmd.PersistentFlags().Int64Var(&flags.poolID, "pool-id", flags.poolID, "metadata pool id")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "local mirror pool directory (offline inspection / undump target)")
	rootCmd.PersistentFlags().StringVar(&flags.grpcAddr, "grpc", "", "object-store/cluster-membership sidecar address; when unset the local mirror pool is used")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", flags.logLevel, "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", flags.logFormat, "log format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flags.keepPayloads, "keep-payloads", flags.keepPayloads, "retain raw event payload bytes in the health report")

	rootCmd.AddCommand(newJournalCmd(flags), newHeaderCmd(flags), newEventCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildLogger(flags *globalFlags) logpkg.Logger {
	level, err := logpkg.ParseLevel(flags.logLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if strings.EqualFold(flags.logFormat, "json") {
		formatter = &logpkg.JSONFormatter{}
	}
	return logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
}

func openRuntime(ctx context.Context, flags *globalFlags, logger logpkg.Logger) (*rt.Runtime, error) {
	cfg := cfgpkg.Default()
	cfg.Rank = flags.rank
	cfg.PoolID = flags.poolID
	cfg.KeepPayloads = flags.keepPayloads
	return rt.Open(ctx, rt.Options{
		DataDir:  flags.dataDir,
		GRPCAddr: flags.grpcAddr,
		Config:   cfg,
		Logger:   logger,
	})
}

func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// filterFlags exposes the five named predicate kinds spec §6 lists for
// ScanOptions.Filters, plus the by_expr CEL generalization, as CLI flags.
type filterFlags struct {
	typeTag    string
	inode      uint64
	pathPrefix string
	dirfrag    string
	rangeSpec  string
	expr       string
}

func registerFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.typeTag, "filter-type", "", "match events with this type tag (by_type)")
	cmd.Flags().Uint64Var(&f.inode, "filter-inode", 0, "match events with this inode (by_inode)")
	cmd.Flags().StringVar(&f.pathPrefix, "filter-path-prefix", "", "match events whose path has this prefix (by_path_prefix)")
	cmd.Flags().StringVar(&f.dirfrag, "filter-dirfrag-name", "", "match events whose path's final component equals this (by_dirfrag_name)")
	cmd.Flags().StringVar(&f.rangeSpec, "filter-range", "", "match events within lo-hi stream offsets; omit hi for open-ended (by_range)")
	cmd.Flags().StringVar(&f.expr, "filter-expr", "", "CEL expression over offset/type/path/inode (by_expr)")
}

// buildFilters composes ScanOptions.Filters from whichever filter flags
// were set; unset flags contribute nothing. Filters are ANDed together,
// matching passesFilters' all-must-match semantics.
func buildFilters(f *filterFlags) ([]journal.Filter, error) {
	var filters []journal.Filter
	if f.typeTag != "" {
		filters = append(filters, journal.ByType(f.typeTag))
	}
	if f.inode != 0 {
		filters = append(filters, journal.ByInode(f.inode))
	}
	if f.pathPrefix != "" {
		filters = append(filters, journal.ByPathPrefix(f.pathPrefix))
	}
	if f.dirfrag != "" {
		filters = append(filters, journal.ByDirfragName(f.dirfrag))
	}
	if f.rangeSpec != "" {
		r, err := parseRangeFlag(f.rangeSpec)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter-range: %w", err)
		}
		filters = append(filters, journal.ByRange(r))
	}
	if f.expr != "" {
		ef, err := journal.NewExprFilter(f.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter-expr: %w", err)
		}
		filters = append(filters, ef)
	}
	return filters, nil
}

func parseRangeFlag(s string) (journal.Range, error) {
	lo, hiPart, _ := strings.Cut(s, "-")
	loVal, err := strconv.ParseUint(lo, 0, 64)
	if err != nil {
		return journal.Range{}, fmt.Errorf("lo %q: %w", lo, err)
	}
	hi := journal.InfiniteOffset
	if hiPart != "" {
		hiVal, err := strconv.ParseUint(hiPart, 0, 64)
		if err != nil {
			return journal.Range{}, fmt.Errorf("hi %q: %w", hiPart, err)
		}
		hi = hiVal
	}
	return journal.Range{Lo: loVal, Hi: hi}, nil
}

func newJournalCmd(flags *globalFlags) *cobra.Command {
	journalCmd := &cobra.Command{Use: "journal", Short: "Scan and recover the journal event stream"}

	var jsonOut bool
	var filters filterFlags
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Scan the journal and print a health report",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(flags)
			ctx, cancel := notifyContext()
			defer cancel()

			runtime, err := openRuntime(ctx, flags, logger)
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer runtime.Close()

			scanFilters, err := buildFilters(&filters)
			if err != nil {
				return err
			}

			report, err := runtime.NewScanner(journal.ScanOptions{
				Rank:              flags.rank,
				PoolID:            flags.poolID,
				KeepPayloads:      flags.keepPayloads,
				Filters:           scanFilters,
				ObjectSizeDefault: runtime.Config().ObjectSizeDefault,
			}).Scan(ctx)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			if jsonOut {
				if err := printJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), journal.Summarize(report))
			}
			if !report.IsHealthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	inspectCmd.Flags().BoolVar(&jsonOut, "json", false, "print the full health report as JSON instead of the one-line summary")
	registerFilterFlags(inspectCmd, &filters)
	journalCmd.AddCommand(inspectCmd)

	var dumpFile string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Copy the journal's [expire_pos, write_pos) byte range to a local sparse file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpFile == "" {
				return fmt.Errorf("--file is required")
			}
			logger := buildLogger(flags)
			ctx, cancel := notifyContext()
			defer cancel()

			runtime, err := openRuntime(ctx, flags, logger)
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer runtime.Close()

			header, err := readHeader(ctx, runtime, flags.rank)
			if err != nil {
				return err
			}

			f, err := os.OpenFile(dumpFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()

			objSize := header.Layout.ObjectSize
			if objSize == 0 {
				objSize = runtime.Config().ObjectSizeDefault
			}
			if err := journal.Dump(ctx, runtime.Pool(), flags.rank, objSize, header.ExpirePos, header.WritePos, f); err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", dumpFile)
			return nil
		},
	}
	dumpCmd.Flags().StringVar(&dumpFile, "file", "", "destination file path")
	journalCmd.AddCommand(dumpCmd)

	var undumpFile string
	undumpCmd := &cobra.Command{
		Use:   "undump",
		Short: "Replace the journal with the byte range recorded in a previously-dumped sparse file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if undumpFile == "" {
				return fmt.Errorf("--file is required")
			}
			logger := buildLogger(flags)
			ctx, cancel := notifyContext()
			defer cancel()

			runtime, err := openRuntime(ctx, flags, logger)
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer runtime.Close()

			f, err := os.Open(undumpFile)
			if err != nil {
				return err
			}
			defer f.Close()

			preamble := make([]byte, journal.PreambleLen)
			if _, err := f.ReadAt(preamble, 0); err != nil {
				return fmt.Errorf("read preamble: %w", err)
			}

			objSize := runtime.Config().ObjectSizeDefault
			if err := journal.Undump(ctx, runtime.Pool(), flags.rank, flags.poolID, objSize, f, preamble); err != nil {
				return fmt.Errorf("undump: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored journal from %s\n", undumpFile)
			return nil
		},
	}
	undumpCmd.Flags().StringVar(&undumpFile, "file", "", "source file path")
	journalCmd.AddCommand(undumpCmd)

	return journalCmd
}

func newHeaderCmd(flags *globalFlags) *cobra.Command {
	headerCmd := &cobra.Command{Use: "header", Short: "Header operations"}
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the decoded journal header, or why it can't be read",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(flags)
			ctx, cancel := notifyContext()
			defer cancel()

			runtime, err := openRuntime(ctx, flags, logger)
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer runtime.Close()

			header, err := readHeader(ctx, runtime, flags.rank)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "magic: %s\n", header.Magic)
			fmt.Fprintf(cmd.OutOrStdout(), "trimmed_pos: %d\n", header.TrimmedPos)
			fmt.Fprintf(cmd.OutOrStdout(), "expire_pos: %d\n", header.ExpirePos)
			fmt.Fprintf(cmd.OutOrStdout(), "write_pos: %d\n", header.WritePos)
			fmt.Fprintf(cmd.OutOrStdout(), "layout.object_size: %d\n", header.Layout.ObjectSize)
			fmt.Fprintf(cmd.OutOrStdout(), "layout.pool_id: %d\n", header.Layout.PoolID)
			return nil
		},
	}
	headerCmd.AddCommand(getCmd)
	return headerCmd
}

// readHeader reads and decodes the header object directly, bypassing a
// full scan; used by header get and as the object_size/range source for
// journal dump.
func readHeader(ctx context.Context, runtime *rt.Runtime, rank uint32) (journal.Header, error) {
	data, err := runtime.Pool().Read(ctx, journal.ObjectName(rank, 0))
	if err != nil {
		return journal.Header{}, fmt.Errorf("header object missing: %w", err)
	}
	header, err := journal.DecodeHeader(data)
	if err != nil {
		return journal.Header{}, fmt.Errorf("header corrupt: %w", err)
	}
	return header, nil
}

func newEventCmd(flags *globalFlags) *cobra.Command {
	eventCmd := &cobra.Command{Use: "event", Short: "Event operations"}

	var output, outPath string
	var latest bool
	var filters filterFlags
	getCmd := &cobra.Command{
		Use:   "get [offset]",
		Short: "Print or export one decoded event, selected by stream offset or --latest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger(flags)
			ctx, cancel := notifyContext()
			defer cancel()

			runtime, err := openRuntime(ctx, flags, logger)
			if err != nil {
				return fmt.Errorf("open runtime: %w", err)
			}
			defer runtime.Close()

			scanFilters, err := buildFilters(&filters)
			if err != nil {
				return err
			}

			report, err := runtime.NewScanner(journal.ScanOptions{
				Rank:              flags.rank,
				PoolID:            flags.poolID,
				KeepPayloads:      true,
				Filters:           scanFilters,
				ObjectSizeDefault: runtime.Config().ObjectSizeDefault,
			}).Scan(ctx)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			offset, err := selectOffset(report, args, latest)
			if err != nil {
				return err
			}
			ev, ok := report.Events[offset]
			if !ok {
				return fmt.Errorf("no event recorded at offset %d", offset)
			}

			switch output {
			case "", "summary":
				fmt.Fprintf(cmd.OutOrStdout(), "offset=%d type=%s\n", offset, ev.TypeTag)
				if summary, ok := ev.AsUpdate(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  path=%q inode=%d\n", summary.Path, summary.Inode)
				}
			case "binary":
				name := outPath
				if name == "" {
					name = fmt.Sprintf("0x%x_%s.bin", offset, ev.TypeTag)
				}
				if err := os.WriteFile(name, ev.Raw, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
			case "json":
				return printJSON(cmd, ev)
			default:
				return fmt.Errorf("unknown --output %q; want summary|binary|json", output)
			}
			return nil
		},
	}
	getCmd.Flags().StringVar(&output, "output", "summary", "summary|binary|json")
	getCmd.Flags().StringVarP(&outPath, "out", "o", "", "destination path for --output binary")
	getCmd.Flags().BoolVar(&latest, "latest", false, "select the highest-offset recovered event")
	registerFilterFlags(getCmd, &filters)
	eventCmd.AddCommand(getCmd)
	return eventCmd
}

func selectOffset(report *journal.HealthReport, args []string, latest bool) (journal.StreamOffset, error) {
	offsets := report.SortedEventOffsets()
	if latest {
		if len(offsets) == 0 {
			return 0, fmt.Errorf("no recovered events to select --latest from")
		}
		return offsets[len(offsets)-1], nil
	}
	if len(args) == 0 {
		return 0, fmt.Errorf("an offset argument or --latest is required")
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), hexOrDec(args[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", args[0], err)
	}
	return journal.StreamOffset(v), nil
}

func hexOrDec(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
