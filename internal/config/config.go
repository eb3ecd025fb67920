// Package config loads the TOML configuration documents the CLI
// accepts: sampler configuration (join/predicate/aggregate knobs plus
// generator-level settings) and run configuration (client, workload, and
// report settings). It reuses github.com/BurntSushi/toml and the
// struct-tag idiom of the teacher's internal/parser/toml package, but
// decodes into its own flat documents rather than the teacher's
// dialect/validation-heavy schema format — this domain's configuration
// surface is the one enumerated in spec §6, nothing more.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"defio/internal/sqlast"
	"defio/internal/sqlgen/sampler"
	"defio/internal/workload"
)

// SamplerConfig is the TOML document driving RandomSqlGenerator
// construction: [join], [predicate], [aggregate] tables plus the
// generator-level num_queries and an optional seed.
type SamplerConfig struct {
	NumQueries int    `toml:"num_queries"`
	Seed       *int64 `toml:"seed"` // nil means entropy-sourced, per sqlgen.NewRandomSqlGenerator

	Join      JoinConfig      `toml:"join"`
	Predicate PredicateConfig `toml:"predicate"`
	Aggregate AggregateConfig `toml:"aggregate"`
}

// JoinConfig is the TOML shape of sampler.JoinSamplerConfig. JoinTypes
// are spelled as their SQL keywords ("INNER JOIN", "LEFT JOIN", ...)
// since sqlast.JoinType is itself a string type.
type JoinConfig struct {
	MaxNumJoins    int       `toml:"max_num_joins"`
	JoinTypes      []string  `toml:"join_types"`
	JoinTypeWeight []float64 `toml:"join_type_weights"`
	WithSelfJoin   bool      `toml:"with_self_join"`
}

// Resolve converts the TOML representation into a validated
// sampler.JoinSamplerConfig.
func (c JoinConfig) Resolve() (sampler.JoinSamplerConfig, error) {
	joinTypes := make([]sqlast.JoinType, len(c.JoinTypes))
	for i, jt := range c.JoinTypes {
		joinTypes[i] = sqlast.JoinType(jt)
	}
	resolved := sampler.JoinSamplerConfig{
		MaxNumJoins:    c.MaxNumJoins,
		JoinTypes:      joinTypes,
		JoinTypeWeight: c.JoinTypeWeight,
		WithSelfJoin:   c.WithSelfJoin,
	}
	if err := resolved.Validate(); err != nil {
		return sampler.JoinSamplerConfig{}, fmt.Errorf("config: [join]: %w", err)
	}
	return resolved, nil
}

// PredicateConfig is the TOML shape of sampler.PredicateSamplerConfig.
type PredicateConfig struct {
	MaxNumPredicates int     `toml:"max_num_predicates"`
	PDropPointQuery  float64 `toml:"p_drop_point_query"`
	PNot             float64 `toml:"p_not"`
}

// Resolve converts the TOML representation into a validated
// sampler.PredicateSamplerConfig.
func (c PredicateConfig) Resolve() (sampler.PredicateSamplerConfig, error) {
	resolved := sampler.PredicateSamplerConfig{
		MaxNumPredicates: c.MaxNumPredicates,
		PDropPointQuery:  c.PDropPointQuery,
		PNot:             c.PNot,
	}
	if err := resolved.Validate(); err != nil {
		return sampler.PredicateSamplerConfig{}, fmt.Errorf("config: [predicate]: %w", err)
	}
	return resolved, nil
}

// AggregateConfig is the TOML shape of sampler.AggregateSamplerConfig.
type AggregateConfig struct {
	MaxNumAggregates int     `toml:"max_num_aggregates"`
	PCountStar       float64 `toml:"p_count_star"`
	PCountDistinct   float64 `toml:"p_count_distinct"`
}

// Resolve converts the TOML representation into a validated
// sampler.AggregateSamplerConfig.
func (c AggregateConfig) Resolve() (sampler.AggregateSamplerConfig, error) {
	resolved := sampler.AggregateSamplerConfig{
		MaxNumAggregates: c.MaxNumAggregates,
		PCountStar:       c.PCountStar,
		PCountDistinct:   c.PCountDistinct,
	}
	if err := resolved.Validate(); err != nil {
		return sampler.AggregateSamplerConfig{}, fmt.Errorf("config: [aggregate]: %w", err)
	}
	return resolved, nil
}

// LoadSamplerConfig decodes a SamplerConfig document from r.
func LoadSamplerConfig(r io.Reader) (SamplerConfig, error) {
	var c SamplerConfig
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return SamplerConfig{}, fmt.Errorf("config: decode sampler config: %w", err)
	}
	return c, nil
}

// LoadSamplerConfigFile opens path and decodes it as a SamplerConfig.
func LoadSamplerConfigFile(path string) (SamplerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SamplerConfig{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return LoadSamplerConfig(f)
}

// RunConfig is the TOML document driving a Runner invocation: which
// client to execute against, how many users and how their queries are
// scheduled, and where reports go.
type RunConfig struct {
	Client   ClientConfig   `toml:"client"`
	Workload WorkloadConfig `toml:"workload"`
	Report   ReportConfig   `toml:"report"`
}

// ClientConfig selects and configures a client.Client implementation.
// Driver is either "mysql" (internal/client/sqlclient) or "postgres"
// (internal/client/pgxclient).
type ClientConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// WorkloadConfig is the [workload] table of a run configuration. The run
// command applies only Schedule, identically to every statement it reads,
// as a single user; NumUsers and NumQueries are decoded but not read by it.
type WorkloadConfig struct {
	NumUsers   int            `toml:"num_users"`
	NumQueries int            `toml:"num_queries"`
	Schedule   ScheduleConfig `toml:"schedule"`
}

// ScheduleConfig is the TOML shape of a workload.Schedule: either a
// one-shot "once" schedule (every query due immediately) or a "repeat"
// schedule firing every Interval, bounded by either Count repeats or a
// total Until duration.
type ScheduleConfig struct {
	Kind     string `toml:"kind"` // "once" (default) or "repeat"
	Interval string `toml:"interval"`
	Count    int    `toml:"count"`
	Until    string `toml:"until"`
}

// Resolve builds the workload.Schedule this configuration describes.
func (c ScheduleConfig) Resolve() (workload.Schedule, error) {
	switch c.Kind {
	case "", "once":
		return workload.NewOnceNow(), nil
	case "repeat":
		interval, err := time.ParseDuration(c.Interval)
		if err != nil {
			return nil, fmt.Errorf("config: [workload.schedule]: interval: %w", err)
		}
		if c.Until != "" {
			until, err := time.ParseDuration(c.Until)
			if err != nil {
				return nil, fmt.Errorf("config: [workload.schedule]: until: %w", err)
			}
			repeat, err := workload.RepeatStartingNowUntil(interval, time.Now().Add(until))
			if err != nil {
				return nil, fmt.Errorf("config: [workload.schedule]: %w", err)
			}
			return repeat, nil
		}
		if c.Count > 0 {
			repeat, err := workload.RepeatStartingNowCount(interval, c.Count)
			if err != nil {
				return nil, fmt.Errorf("config: [workload.schedule]: %w", err)
			}
			return repeat, nil
		}
		return nil, fmt.Errorf("config: [workload.schedule]: repeat schedule needs count or until")
	default:
		return nil, fmt.Errorf("config: [workload.schedule]: unknown kind %q", c.Kind)
	}
}

// ReportConfig selects the reporter. An empty Dir means no file is
// written (the CLI falls back to an in-memory BufferingReporter);
// otherwise reports stream to "<label>-<timestamp>.temp.txt" inside Dir,
// renamed on completion (see internal/reporter.FileReporter).
type ReportConfig struct {
	Dir string `toml:"dir"`
}

// LoadRunConfig decodes a RunConfig document from r.
func LoadRunConfig(r io.Reader) (RunConfig, error) {
	var c RunConfig
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return RunConfig{}, fmt.Errorf("config: decode run config: %w", err)
	}
	return c, nil
}

// LoadRunConfigFile opens path and decodes it as a RunConfig.
func LoadRunConfigFile(path string) (RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return LoadRunConfig(f)
}
