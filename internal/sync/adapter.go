// Package syncadapter bridges Go's goroutine-and-channel concurrency into
// Dana's synchronous surface (spec §5): "async host functions are awaited
// to completion via a sync adapter (safe_asyncio_run semantics)". A host
// function backed by a private goroutine or an external async client is
// run to completion before the calling Dana statement continues; no
// suspension point is ever visible at the language surface.
package syncadapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dana-lang/dana/internal/values"
)

// Task is a host coroutine's body. It receives the adapter's own context
// so a Task that itself needs to Await another Task can detect it is
// already running on the loop (see onLoop) instead of deadlocking.
type Task func(ctx context.Context) (values.Value, error)

type loopKey struct{}

func onLoop(ctx context.Context) bool {
	v, _ := ctx.Value(loopKey{}).(bool)
	return v
}

type job struct {
	task   Task
	result chan result
}

type result struct {
	v   values.Value
	err error
}

// Adapter owns one lazily-started worker goroutine, the "private event
// loop" of spec §5. The first Await call starts it; every later call
// schedules onto the same goroutine and blocks for the result, matching
// "either runs it on a private event loop (if none is running) or
// schedules and blocks on it (if one exists)".
type Adapter struct {
	once sync.Once
	jobs chan job
}

func New() *Adapter {
	return &Adapter{jobs: make(chan job)}
}

func (a *Adapter) startLoop() {
	a.once.Do(func() {
		go a.loop()
	})
}

func (a *Adapter) loop() {
	ctx := context.WithValue(context.Background(), loopKey{}, true)
	for j := range a.jobs {
		j.result <- runSafely(ctx, j.task)
	}
}

// Await runs task to completion and returns its result, blocking the
// calling goroutine. Dana itself never calls Await concurrently (the
// interpreter serves one execution at a time, spec §5 "re-entrancy"), but
// a host coroutine can legitimately await another one; calling Await with
// a ctx already marked as on-loop runs task inline on the caller's own
// goroutine rather than submitting to a loop goroutine that is, by
// definition, busy running the outer task and could never service it.
//
// Internally every dispatch is tracked as a values.Promise (spec §3.1,
// §5: "the only producer of promises is the sync adapter's internal
// bookkeeping" — Dana code never sees an unresolved one, since Await
// always blocks until Resolve has been called).
func (a *Adapter) Await(ctx context.Context, task Task) (values.Value, error) {
	p := values.NewPromise(uuid.NewString())

	if onLoop(ctx) {
		r := runSafely(ctx, task)
		p.Resolve(r.v, r.err)
		v, err, _ := p.Result()
		return v, err
	}

	a.startLoop()
	j := job{task: task, result: make(chan result, 1)}
	a.jobs <- j
	r := <-j.result
	p.Resolve(r.v, r.err)
	v, err, _ := p.Result()
	return v, err
}

func runSafely(ctx context.Context, task Task) (r result) {
	defer func() {
		if p := recover(); p != nil {
			r = result{nil, fmt.Errorf("sync adapter: host coroutine panicked: %v", p)}
		}
	}()
	v, err := task(ctx)
	return result{v, err}
}
