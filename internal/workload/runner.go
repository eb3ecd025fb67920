package workload

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"defio/internal/client"
	"defio/internal/clock"
)

// Reporter receives QueryReports as the Runner completes them, and is
// signalled once when the run finishes. Only two methods: fatal reporter
// I/O errors are surfaced through the Runner's own error return instead
// of a separate Error callback.
type Reporter interface {
	Report(report QueryReport) error
	Done() error
}

// RunnerConfig bounds the Runner's per-user scheduling queue.
type RunnerConfig struct {
	// MaxScheduledQueueSize caps how far a user's scheduler goroutine is
	// allowed to run ahead of its executor. Once full, scheduling blocks
	// until the executor drains an entry.
	MaxScheduledQueueSize int
}

// DefaultRunnerConfig matches the reference implementation's queue bound.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{MaxScheduledQueueSize: 10}
}

// Run executes w against c, feeding every completion to rep, using the
// default RunnerConfig.
func Run(ctx context.Context, w Workload, c client.Client, rep Reporter) error {
	return RunWithConfig(ctx, w, c, rep, DefaultRunnerConfig())
}

// RunWithConfig drives one (scheduler, executor) goroutine pair per user
// in w, plus a single reporter goroutine that serializes every
// completion through rep. Each user's pair is decoupled from every other
// user's by its own bounded priority queue: a slow user never blocks a
// fast one. The whole run is structured under one errgroup, so a fatal
// error in any goroutine cancels the shared context and every other
// goroutine unwinds.
func RunWithConfig(ctx context.Context, w Workload, c client.Client, rep Reporter, config RunnerConfig) error {
	units := w.All()
	if len(units) == 0 {
		return rep.Done()
	}

	eg, ctx := errgroup.WithContext(ctx)
	completed := make(chan completionEvent, config.MaxScheduledQueueSize)

	for _, unit := range units {
		unit := unit
		queue := newScheduledQueue(config.MaxScheduledQueueSize)
		eg.Go(func() error { return schedulerWorker(ctx, unit.User, unit.Queries, queue) })
		eg.Go(func() error { return executorWorker(ctx, c, queue, completed) })
	}
	eg.Go(func() error { return reporterWorker(ctx, rep, completed, len(units)) })

	return eg.Wait()
}

// completionEvent flows from an executor to the reporter goroutine: it
// is either one finished QueryReport, or (Report == nil) a signal that
// this executor has no more work and has shut down.
type completionEvent struct {
	report *QueryReport
}

// schedulerWorker pulls queries from source as fast as the queue allows
// and turns each into a scheduledItem carrying the wall-clock instant it
// is due. It shuts the queue down once source is exhausted.
func schedulerWorker(ctx context.Context, user User, source QuerySource, queue *scheduledQueue) error {
	var putErr error
	source.All()(func(q Query) bool {
		putErr = scheduleOne(ctx, user, q, queue)
		return putErr == nil
	})
	if putErr != nil {
		return putErr
	}
	return queue.put(ctx, scheduledItem{shutdown: true})
}

// scheduleOne computes the wall-clock time q is next due and enqueues it.
func scheduleOne(ctx context.Context, user User, q Query, queue *scheduledQueue) error {
	now := time.Now()
	timeUntilNext := q.Schedule.TimeUntilNext()
	sq := q.Start(user, now, now.Add(timeUntilNext))
	return queue.put(ctx, scheduledItem{
		scheduledAt: now.Add(timeUntilNext),
		query:       sq,
	})
}

// executorWorker pops due queries from queue in scheduled-time order,
// waits out any remaining time until each is due, executes it against a
// fresh connection, and reports the outcome. Repeat queries are
// rescheduled onto the same queue after each run, so a user's executor
// never outpaces its own scheduler's intent.
func executorWorker(ctx context.Context, c client.Client, queue *scheduledQueue, completed chan<- completionEvent) error {
	for {
		item, err := queue.get(ctx)
		if err != nil {
			return err
		}
		if item.shutdown {
			return sendCompletion(ctx, completed, completionEvent{})
		}

		if wait := time.Until(item.scheduledAt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		report, err := executeOne(ctx, c, item.query)
		if err != nil {
			return err
		}
		if err := sendCompletion(ctx, completed, completionEvent{report: &report}); err != nil {
			return err
		}

		if repeat, ok := item.query.Query.Schedule.(Repeat); ok {
			if repeat.TimeUntilNext() >= 0 {
				if err := scheduleOne(ctx, item.query.User, item.query.Query, queue); err != nil {
					return err
				}
			}
		}
	}
}

// executeOne runs sq.Query against a fresh connection and turns the
// outcome, success or failure, into a QueryReport. A connection error
// and a query execution error are both reported as the query's failure
// rather than aborting the executor: one bad query shouldn't end a run.
func executeOne(ctx context.Context, c client.Client, sq ScheduledQuery) (QueryReport, error) {
	var results []any
	measurement, execErr := clock.Measure(func() error {
		conn, err := c.Connect(ctx)
		if err != nil {
			return fmt.Errorf("runner: connect: %w", err)
		}
		defer conn.Close()

		rows, err := conn.Execute(ctx, sq.Query.SQL)
		if err != nil {
			return fmt.Errorf("runner: execute: %w", err)
		}
		results = make([]any, len(rows))
		for i, row := range rows {
			results[i] = row
		}
		return nil
	})

	if execErr != nil {
		return sq.CreateReport(measurement.StartedAt, measurement.Elapsed, nil, execErr)
	}
	if results == nil {
		results = []any{}
	}
	return sq.CreateReport(measurement.StartedAt, measurement.Elapsed, results, nil)
}

func sendCompletion(ctx context.Context, completed chan<- completionEvent, ev completionEvent) error {
	select {
	case completed <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reporterWorker serializes every completion through rep.Report, and
// calls rep.Done once every executor has signalled shutdown. On
// cancellation it drains whatever completions are already buffered and
// still calls rep.Done before returning, so a cancelled run leaves the
// reporter flushed and closed rather than half-written.
func reporterWorker(ctx context.Context, rep Reporter, completed <-chan completionEvent, numExecutors int) error {
	doneCount := 0
	for {
		select {
		case ev := <-completed:
			if ev.report != nil {
				if err := rep.Report(*ev.report); err != nil {
					return fmt.Errorf("runner: report: %w", err)
				}
				continue
			}
			doneCount++
			if doneCount == numExecutors {
				return rep.Done()
			}
		case <-ctx.Done():
			drainCompletions(rep, completed)
			_ = rep.Done()
			return ctx.Err()
		}
	}
}

func drainCompletions(rep Reporter, completed <-chan completionEvent) {
	for {
		select {
		case ev := <-completed:
			if ev.report != nil {
				_ = rep.Report(*ev.report)
			}
		default:
			return
		}
	}
}

// scheduledItem is one entry of a scheduledQueue: either a query due at
// scheduledAt, or a shutdown marker that always sorts last.
type scheduledItem struct {
	scheduledAt time.Time
	query       ScheduledQuery
	shutdown    bool
}

// scheduledHeap orders scheduledItems by scheduledAt, with shutdown
// markers always last regardless of their (unset) scheduledAt.
type scheduledHeap []scheduledItem

func (h scheduledHeap) Len() int { return len(h) }

func (h scheduledHeap) Less(i, j int) bool {
	if h[i].shutdown != h[j].shutdown {
		return h[j].shutdown
	}
	return h[i].scheduledAt.Before(h[j].scheduledAt)
}

func (h scheduledHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scheduledHeap) Push(x any) {
	*h = append(*h, x.(scheduledItem))
}

func (h *scheduledHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// scheduledQueue is a single-producer, single-consumer bounded priority
// queue of scheduledItems, ordered by scheduledAt. put blocks while the
// queue is at capacity; get blocks while it is empty. Both respect
// context cancellation.
type scheduledQueue struct {
	mu       chan struct{} // 1-buffered mutex, so select can guard it alongside ctx.Done
	heap     scheduledHeap
	capacity int
	notEmpty chan struct{}
	notFull  chan struct{}
}

func newScheduledQueue(capacity int) *scheduledQueue {
	q := &scheduledQueue{
		mu:       make(chan struct{}, 1),
		capacity: capacity,
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
	}
	q.mu <- struct{}{}
	heap.Init(&q.heap)
	return q
}

func (q *scheduledQueue) put(ctx context.Context, item scheduledItem) error {
	for {
		select {
		case <-q.mu:
		case <-ctx.Done():
			return ctx.Err()
		}
		if len(q.heap) < q.capacity {
			heap.Push(&q.heap, item)
			q.mu <- struct{}{}
			notify(q.notEmpty)
			return nil
		}
		q.mu <- struct{}{}

		select {
		case <-q.notFull:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *scheduledQueue) get(ctx context.Context) (scheduledItem, error) {
	for {
		select {
		case <-q.mu:
		case <-ctx.Done():
			return scheduledItem{}, ctx.Err()
		}
		if len(q.heap) > 0 {
			item := heap.Pop(&q.heap).(scheduledItem)
			q.mu <- struct{}{}
			notify(q.notFull)
			return item, nil
		}
		q.mu <- struct{}{}

		select {
		case <-q.notEmpty:
		case <-ctx.Done():
			return scheduledItem{}, ctx.Err()
		}
	}
}

// notify sends on ch without blocking if a signal is already pending.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
