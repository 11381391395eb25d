package workflow

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/schemata/internal/compiler"
)

// flight is the shared run context for one result key. It is detached from
// any single caller and canceled when its last caller leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	callers int
}

func (rt *Runtime) join(ctx context.Context, key string) *flight {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.flights == nil {
		rt.flights = make(map[string]*flight)
	}

	f, ok := rt.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		rt.flights[key] = f
	}
	f.callers++
	return f
}

func (rt *Runtime) leave(key string, f *flight) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	f.callers--
	if f.callers > 0 {
		return
	}
	f.cancel()
	if rt.flights[key] == f {
		delete(rt.flights, key)
	}
}

// share runs the classification for the request's key once across concurrent
// callers. Each caller stops waiting when its own ctx ends; the run stops when
// no caller is left. Every caller receives its own copy of the result.
func share(
	ctx context.Context,
	rt *Runtime,
	req Request,
	target *compiler.TargetType,
	text string,
) (*Outcome, error) {
	key := req.Key()
	name := key.String()

	f := rt.join(ctx, name)
	defer rt.leave(name, f)

	for {
		leader := false
		ch := rt.group.DoChan(name, func() (any, error) {
			leader = true
			return run(f.ctx, rt, req, key, target, text)
		})

		var r singleflight.Result
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r = <-ch:
		}

		if r.Err != nil {
			// Joined a run whose callers had all left; start a fresh one.
			if !leader && errors.Is(r.Err, context.Canceled) && ctx.Err() == nil {
				continue
			}
			return nil, r.Err
		}

		o := r.Val.(*Outcome)
		res := *o.Result
		return &Outcome{Result: &res, Created: o.Created && leader}, nil
	}
}
