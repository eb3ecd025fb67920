package workload

import (
	"fmt"
	"time"

	"defio/internal/lazyseq"
)

// Query is a SQL statement paired with an execution schedule.
type Query struct {
	SQL      string
	Schedule Schedule
}

// Start transitions this query into the SCHEDULED state for the given
// user, recording when it was processed and when it is due to run.
func (q Query) Start(user User, processedTime, scheduledTime time.Time) ScheduledQuery {
	return ScheduledQuery{
		User:          user,
		Query:         q,
		ProcessedTime: processedTime,
		ScheduledTime: scheduledTime,
	}
}

// ScheduledQuery is a Query that the Runner has scheduled to execute
// once at ScheduledTime. A single Query may be scheduled multiple times
// (e.g. under a Repeat schedule).
type ScheduledQuery struct {
	User          User
	Query         Query
	ProcessedTime time.Time
	ScheduledTime time.Time
}

// CreateReport builds a completion report of this scheduled query.
// Exactly one of results or err must be set.
func (sq ScheduledQuery) CreateReport(executedTime time.Time, executionTime time.Duration, results []any, err error) (QueryReport, error) {
	if (results != nil) == (err != nil) {
		return QueryReport{}, fmt.Errorf("workload: report must carry exactly one of results or error")
	}
	return QueryReport{
		User:          sq.User,
		Query:         sq.Query,
		ProcessedTime: sq.ProcessedTime,
		ScheduledTime: sq.ScheduledTime,
		ExecutedTime:  executedTime,
		ExecutionTime: executionTime,
		Results:       results,
		Err:           err,
	}, nil
}

// QueryReport is the outcome of one execution of a ScheduledQuery,
// either a success (Results set) or a failure (Err set).
type QueryReport struct {
	User          User
	Query         Query
	ProcessedTime time.Time
	ScheduledTime time.Time
	ExecutedTime  time.Time
	ExecutionTime time.Duration
	Results       []any
	Err           error
}

// CompletedTime is when the query transitioned from RUNNING to COMPLETED.
func (r QueryReport) CompletedTime() time.Time {
	return r.ExecutedTime.Add(r.ExecutionTime)
}

// QuerySource is a restartable, lazy sequence of queries, consumed once
// per user by the Runner's scheduler goroutine.
type QuerySource = lazyseq.Seq[Query]

// QueryGenerator converts a source of SQL strings into a QuerySource,
// attaching either a fixed schedule (every query fires at the same
// Once instant) or an evenly-spaced one (each query's Once schedule is
// offset from the first by a multiple of Interval).
type QueryGenerator struct {
	sqlSource lazyseq.Seq[string]
	fixedTime *Once // mutually exclusive with interval
	interval  *time.Duration
}

// WithFixedTime returns a QueryGenerator where every query shares the
// same fixed schedule. sqlSource shouldn't be an unbounded generator of
// recurring queries — Once schedules are meant for one-shot SQL sources.
func WithFixedTime(sqlSource lazyseq.Seq[string], schedule Once) *QueryGenerator {
	return &QueryGenerator{sqlSource: sqlSource, fixedTime: &schedule}
}

// WithFixedInterval returns a QueryGenerator whose queries are scheduled
// at evenly-spaced Once instants, starting at the time iteration begins.
func WithFixedInterval(sqlSource lazyseq.Seq[string], interval time.Duration) *QueryGenerator {
	return &QueryGenerator{sqlSource: sqlSource, interval: &interval}
}

// WithFixedRate is WithFixedInterval expressed as a query rate: no more
// than queriesPerSecond queries are scheduled within any one-second window.
func WithFixedRate(sqlSource lazyseq.Seq[string], queriesPerSecond float64) *QueryGenerator {
	interval := time.Duration(float64(time.Second) / queriesPerSecond)
	return &QueryGenerator{sqlSource: sqlSource, interval: &interval}
}

// All implements lazyseq.Seq[Query].
func (g *QueryGenerator) All() func(yield func(Query) bool) {
	return func(yield func(Query) bool) {
		if g.fixedTime != nil {
			g.sqlSource.All()(func(sql string) bool {
				return yield(Query{SQL: sql, Schedule: *g.fixedTime})
			})
			return
		}

		startTime := time.Now()
		i := 0
		g.sqlSource.All()(func(sql string) bool {
			at := startTime.Add(time.Duration(i) * *g.interval)
			i++
			return yield(Query{SQL: sql, Schedule: Once{At: at}})
		})
	}
}

var _ lazyseq.Seq[Query] = (*QueryGenerator)(nil)
