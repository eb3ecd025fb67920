// Package main contains the cli implementation of the tool. It uses the
// cobra package for cli tool implementation, matching the teacher's
// cmd/smf shell: flags in, calls into the internal packages, nothing
// else.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"defio/internal/client"
	"defio/internal/client/pgxclient"
	"defio/internal/client/sqlclient"
	"defio/internal/config"
	"defio/internal/lazyseq"
	"defio/internal/logging"
	"defio/internal/reporter"
	"defio/internal/rng"
	"defio/internal/schemaddl"
	"defio/internal/sqlgen"
	"defio/internal/stats"
	"defio/internal/workload"
)

type generateFlags struct {
	schemaFile string
	statsFile  string
	configFile string
	batchSize  int
}

type runFlags struct {
	runConfigFile string
	sqlFile       string
	label         int
	timeout       int
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "defio",
		Short: "Synthetic SQL workload generator and executor",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random SELECT statements for a schema",
		Long: `Generate reads a DDL schema, an optional stats file, and a sampler
configuration, then streams generated SELECT statements to stdout, one per line.

Examples:
  defio generate --schema schema.sql --config sampler.toml
  defio generate --schema schema.sql --stats stats.json --config sampler.toml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate(flags)
		},
	}

	cmd.Flags().StringVar(&flags.schemaFile, "schema", "", "Path to DDL schema file (required)")
	cmd.Flags().StringVar(&flags.statsFile, "stats", "", "Path to stats JSON file (optional; required by predicate sampling)")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to sampler TOML configuration (required)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 50, "Number of generated statements flushed to stdout per batch")

	return cmd
}

func runGenerate(flags *generateFlags) error {
	logger := logging.Stdout()

	if flags.schemaFile == "" {
		return fmt.Errorf("--schema is required")
	}
	if flags.configFile == "" {
		return fmt.Errorf("--config is required")
	}

	ddl, err := os.ReadFile(flags.schemaFile)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	schema, err := schemaddl.Load(string(ddl))
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	logger.Infof("loaded schema with %d table(s)", len(schema.Tables))

	var dataStats *stats.DataStats
	if flags.statsFile != "" {
		raw, err := os.ReadFile(flags.statsFile)
		if err != nil {
			return fmt.Errorf("read stats file: %w", err)
		}
		dataStats, err = stats.Load(raw)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
	}

	samplerConfig, err := config.LoadSamplerConfigFile(flags.configFile)
	if err != nil {
		return err
	}
	joinConfig, err := samplerConfig.Join.Resolve()
	if err != nil {
		return err
	}
	predicateConfig, err := samplerConfig.Predicate.Resolve()
	if err != nil {
		return err
	}
	aggregateConfig, err := samplerConfig.Aggregate.Resolve()
	if err != nil {
		return err
	}

	generator := &sqlgen.RandomSqlGenerator{
		Schema:          schema,
		Stats:           dataStats,
		JoinConfig:      joinConfig,
		PredicateConfig: predicateConfig,
		AggregateConfig: aggregateConfig,
		NumQueries:      samplerConfig.NumQueries,
	}
	if samplerConfig.Seed != nil {
		generator.Seed = *samplerConfig.Seed
	} else {
		generator.Seed = rng.CreateEntropy()
	}

	logger.Infof("generating %d quer(y/ies)", samplerConfig.NumQueries)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	batches := lazyseq.Chunk[string](generator, flags.batchSize)
	batches.All()(func(batch []string) bool {
		for _, sql := range batch {
			fmt.Fprintln(out, sql)
		}
		return true
	})

	return out.Flush()
}

func runCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a generated SQL workload against a database",
		Long: `Run reads newline-delimited SQL statements (from --sql-file or stdin),
schedules them as a single-user workload per the [workload.schedule] section of
the run configuration, executes them against the configured client, and writes
a report.

Examples:
  defio generate --schema schema.sql --config sampler.toml | defio run --config run.toml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRun(flags)
		},
	}

	cmd.Flags().StringVar(&flags.runConfigFile, "config", "", "Path to run TOML configuration (required)")
	cmd.Flags().StringVar(&flags.sqlFile, "sql-file", "", "Path to newline-delimited SQL statements (default: stdin)")
	cmd.Flags().IntVar(&flags.label, "label", 0, "Integer label for the single user this invocation represents")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "Overall run timeout in seconds (0 means no timeout)")

	return cmd
}

func runRun(flags *runFlags) error {
	logger := logging.Stdout()

	if flags.runConfigFile == "" {
		return fmt.Errorf("--config is required")
	}

	runConfig, err := config.LoadRunConfigFile(flags.runConfigFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if flags.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(flags.timeout)*time.Second)
		defer cancel()
	}

	dbClient, err := newClient(ctx, runConfig.Client)
	if err != nil {
		return fmt.Errorf("connect client: %w", err)
	}
	defer dbClient.Close()

	sqlSource, closeSource, err := openSQLSource(flags.sqlFile)
	if err != nil {
		return err
	}
	defer closeSource()

	schedule, err := runConfig.Workload.Schedule.Resolve()
	if err != nil {
		return err
	}

	user := workload.NewUser(flags.label)
	w := workload.Serial(withSchedule(sqlSource, schedule), &user)

	rep, closeReporter, err := newReporter(runConfig.Report, flags.label)
	if err != nil {
		return err
	}
	defer closeReporter()

	logger.Infof("running workload for user %d", flags.label)
	if err := workload.Run(ctx, w, dbClient, rep); err != nil {
		return fmt.Errorf("run workload: %w", err)
	}
	logger.Infof("workload complete")

	return nil
}

func newClient(ctx context.Context, c config.ClientConfig) (client.Client, error) {
	switch c.Driver {
	case "mysql":
		return sqlclient.Open(ctx, c.DSN)
	case "postgres", "":
		return pgxclient.Open(ctx, c.DSN)
	default:
		return nil, fmt.Errorf("unknown client driver %q", c.Driver)
	}
}

func newReporter(c config.ReportConfig, label int) (workload.Reporter, func(), error) {
	if c.Dir == "" {
		rep := reporter.NewBufferingReporter()
		return rep, func() {}, nil
	}
	rep, err := reporter.NewFileReporter(c.Dir, strconv.Itoa(label))
	if err != nil {
		return nil, nil, fmt.Errorf("open report file: %w", err)
	}
	return rep, func() {}, nil
}

// openSQLSource reads newline-delimited SQL statements from path, or
// from stdin when path is empty, and returns a restartable source over
// the fully-buffered lines alongside a closer that closes the opened file
// (a no-op for stdin). The input is read eagerly, once, up front, since
// QuerySource must be restartable.
func openSQLSource(path string) (lazyseq.Seq[string], func(), error) {
	var r *os.File
	if path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sql file: %w", err)
		}
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read sql source: %w", err)
	}

	closer := func() {}
	if path != "" {
		closer = func() { _ = r.Close() }
	}
	return lazyseq.SliceSeq[string]{Items: lines}, closer, nil
}

// withSchedule attaches the same resolved Schedule to every SQL
// statement in source. Unlike workload.WithFixedTime/WithFixedInterval,
// it accepts any workload.Schedule, which the CLI needs since a run
// configuration resolves to either a Once or a Repeat schedule chosen
// at runtime rather than fixed at compile time.
func withSchedule(source lazyseq.Seq[string], schedule workload.Schedule) workload.QuerySource {
	return lazyseq.FuncSeq[workload.Query]{Factory: func() func(yield func(workload.Query) bool) {
		return func(yield func(workload.Query) bool) {
			source.All()(func(sql string) bool {
				return yield(workload.Query{SQL: sql, Schedule: schedule})
			})
		}
	}}
}
