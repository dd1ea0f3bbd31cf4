package lsbsteg

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job is one framed encode in a batch. Carriers of different jobs must not overlap.
type Job struct {
	Carrier []byte
	Payload []byte
	Rest    []byte // set by EncodeAll on success
}

// EncodeAll frames every job's payload into its own carrier concurrently, using at
// most workers goroutines (workers <= 0 => one per job). The first failure cancels
// jobs that have not started yet and is returned wrapped with the job index.
func EncodeAll(ctx context.Context, jobs []Job, step Step, workers int) error {
	step.SlotsPerByte() // fail fast before any goroutine starts

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range jobs {
		i := i
		job := &jobs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rest, err := Encode(job.Carrier, job.Payload, step)
			if err != nil {
				return fmt.Errorf("lsbsteg: job %d: %w", i, err)
			}
			job.Rest = rest
			return nil
		})
	}
	return g.Wait()
}

// DecodeAll decodes one frame from each carrier concurrently. Results keep the order of carriers.
func DecodeAll(ctx context.Context, carriers [][]byte, step Step, workers int) ([][]byte, error) {
	step.SlotsPerByte()

	out := make([][]byte, len(carriers))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, carrier := range carriers {
		i, carrier := i, carrier
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			payload, err := Decode(carrier, step)
			if err != nil {
				return fmt.Errorf("lsbsteg: carrier %d: %w", i, err)
			}
			out[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
