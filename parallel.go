package vks

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RecordConcurrently records secondary command buffers in parallel, one
// goroutine per buffer. Each goroutine gets its own Recorder, so tracking
// never crosses goroutines; the returned recordings carry their resource
// uses and are merged into a primary with Recorder.ExecuteCommands.
//
// Command pools are not thread safe, so each buffer must come from a
// different pool.
func RecordConcurrently(ctx context.Context, buffers []*CommandBuffer, record func(ctx context.Context, r *Recorder, index int) error) ([]*SyncCommandBuffer, error) {
	out := make([]*SyncCommandBuffer, len(buffers))

	g, ctx := errgroup.WithContext(ctx)
	for i := range buffers {
		i := i
		g.Go(func() error {
			r := NewRecorder(buffers[i])
			if err := r.Begin(); err != nil {
				return err
			}
			if err := record(ctx, r, i); err != nil {
				return err
			}
			scb, err := r.End()
			if err != nil {
				return err
			}
			out[i] = scb
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
