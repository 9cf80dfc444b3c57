package decoder

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/arloliu/tiledec/codec"
)

// Worker decodes bands on its own goroutine. It owns no buffers between
// instructions: everything it touches arrives in an Instruction and leaves in
// a Report.
type Worker struct {
	id      int
	binding codec.Binding
	in      chan Instruction
	out     chan<- Report
	logger  log.Logger
	debug   bool
}

// NewWorker creates a worker that reports to out.
func NewWorker(id int, binding codec.Binding, out chan<- Report, logger log.Logger, debug bool) *Worker {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Worker{
		id:      id,
		binding: binding,
		in:      make(chan Instruction, 1),
		out:     out,
		logger:  log.With(logger, "worker", id),
		debug:   debug,
	}
}

// Post hands an instruction to the worker. It never blocks while the worker
// is idle; the pool sends at most one instruction per worker at a time.
func (w *Worker) Post(instr Instruction) {
	w.in <- instr
}

// Stop closes the instruction channel; Run returns after the current decode.
func (w *Worker) Stop() {
	close(w.in)
}

// Run announces readiness, then decodes instructions until Stop is called.
//
// Reports are always delivered, even if ctx is cancelled: the pool counts on
// getting its buffers back.
func (w *Worker) Run(ctx context.Context) error {
	w.out <- Report{Kind: KindReady, Worker: w.id}

	for instr := range w.in {
		w.out <- w.decode(instr)
	}

	level.Debug(w.logger).Log("msg", "worker stopped", "cause", context.Cause(ctx))

	return nil
}

func (w *Worker) decode(instr Instruction) (rep Report) {
	start := time.Now()
	n := instr.Width * instr.Height

	rep = Report{
		Kind:     KindDecompressed,
		Worker:   w.id,
		Job:      instr.Job,
		Band:     instr.Band,
		Input:    instr.Input,
		Output:   instr.Output,
		Produced: n,
		Width:    instr.Width,
		Height:   instr.Height,
	}

	defer func() {
		if r := recover(); r != nil {
			rep.Err = fmt.Errorf("codec panic: %v", r)
			rep.Produced = 0
		}
		rep.Elapsed = time.Since(start)
	}()

	values := instr.Output.Values(n)
	err := w.binding.Decode(values, instr.Input.B[:instr.SubsetLength], instr.Width, instr.Height, instr.Precision)
	if err != nil {
		rep.Err = err
		rep.Produced = 0

		return rep
	}

	ReinsertNaNs(values, instr.NaNRuns)
	Rescale(values, instr.Range)

	if w.debug {
		elapsed := time.Since(start)
		mb := 4e-6 * float64(n)
		secs := max(elapsed.Seconds(), 1e-9)
		level.Debug(w.logger).Log(
			"msg", "decompressed band",
			"job", instr.Job,
			"band", instr.Band,
			"size_mb", fmt.Sprintf("%.2f", mb),
			"elapsed", elapsed,
			"mb_per_sec", fmt.Sprintf("%.2f", mb/secs),
			"mpix_per_sec", fmt.Sprintf("%.2f", mb/secs/4),
		)
	}

	return rep
}
