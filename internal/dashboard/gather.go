package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// call is one remote request in a batch. run stores its own result on success.
// Optional calls never count toward total batch failure.
type call struct {
	name     string
	optional bool
	run      func(ctx context.Context) error
}

// batch holds per-call outcomes of a gather.
type batch struct {
	calls []call
	errs  []error
}

// gather runs all calls concurrently and waits for every one of them.
// A failing or panicking call does not affect its siblings.
func gather(ctx context.Context, calls ...call) *batch {
	b := &batch{calls: calls, errs: make([]error, len(calls))}

	var g errgroup.Group
	for i, c := range calls {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					b.errs[i] = fmt.Errorf("%s panicked: %v", c.name, r)
				}
			}()
			b.errs[i] = c.run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return b
}

// ok reports whether the named call succeeded.
func (b *batch) ok(name string) bool {
	for i, c := range b.calls {
		if c.name == name {
			return b.errs[i] == nil
		}
	}
	return false
}

// failed lists the names of failed calls.
func (b *batch) failed() []string {
	var names []string
	for i, c := range b.calls {
		if b.errs[i] != nil {
			names = append(names, c.name)
		}
	}
	return names
}

// required returns the number of non-optional calls.
func (b *batch) required() int {
	n := 0
	for _, c := range b.calls {
		if !c.optional {
			n++
		}
	}
	return n
}

// allFailed reports whether every required call failed.
func (b *batch) allFailed() bool {
	if b.required() == 0 {
		return false
	}
	for i, c := range b.calls {
		if !c.optional && b.errs[i] == nil {
			return false
		}
	}
	return true
}

// firstErr returns the first required call's error.
func (b *batch) firstErr() error {
	for i, c := range b.calls {
		if !c.optional && b.errs[i] != nil {
			return b.errs[i]
		}
	}
	return nil
}
