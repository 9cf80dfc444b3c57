package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/tiledec/decoder"
	"github.com/arloliu/tiledec/errs"
	"github.com/arloliu/tiledec/format"
	"github.com/arloliu/tiledec/internal/options"
	"github.com/arloliu/tiledec/internal/pool"
	"github.com/arloliu/tiledec/raster"
)

// job is a validated request waiting for, or occupying, the pool.
type job struct {
	seq       uint64
	req       *raster.Request
	future    *Future
	submitted time.Time
}

// slot is the pool-side state of one worker. While a band is in flight its
// buffers belong to the worker and input/output are nil.
type slot struct {
	input     *pool.ByteBuffer
	output    *pool.Float32Buffer
	inputCap  int
	outputCap int
	ready     bool
	produced  int
	err       error
}

// Service decompresses tiles on a fixed pool of decoder workers.
//
// Requests are served strictly in submission order, one at a time: every band
// of the active request runs on its own worker, and the next request starts
// only after all bands of the current one have reported back.
//
// All queue and pool state is owned by a single orchestrator goroutine.
// Public methods talk to it over channels and are safe for concurrent use.
type Service struct {
	cfg      *Config
	logger   log.Logger
	metrics  *Metrics
	poolSize int

	workers []*decoder.Worker
	reports chan decoder.Report
	submits chan *job
	stats   chan chan Stats

	ready     chan struct{}
	closing   chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	group     *errgroup.Group

	// orchestrator-owned
	state      State
	slots      []slot
	queue      []*job
	active     *job
	readyCount int
	seq        uint64
	draining   bool
}

// New starts a service with poolSize workers.
//
// Parameters:
//   - poolSize: Number of decoder workers; also the maximum number of bands per request
//   - opts: Optional configuration
//
// Returns:
//   - *Service: Running service; call Close to stop it
//   - error: errs.ErrInvalidPoolSize or an invalid option
func New(poolSize int, opts ...Option) (*Service, error) {
	if poolSize < 1 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidPoolSize, poolSize)
	}

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	reg := cfg.registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Service{
		cfg:      cfg,
		logger:   cfg.logger,
		metrics:  NewMetrics(reg),
		poolSize: poolSize,
		workers:  make([]*decoder.Worker, poolSize),
		// Each worker has at most one report outstanding besides its ready
		// report, so workers never block on a stopped orchestrator.
		reports: make(chan decoder.Report, 2*poolSize),
		submits: make(chan *job),
		stats:   make(chan chan Stats),
		ready:   make(chan struct{}),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		state:   StateStarting,
		slots:   make([]slot, poolSize),
	}

	for i := range s.slots {
		in := pool.NewByteBuffer(cfg.initialBufferSize)
		out := pool.NewFloat32Buffer(cfg.initialBufferSize)
		s.slots[i] = slot{input: in, output: out, inputCap: in.Cap(), outputCap: out.Cap(), ready: true}
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i := range s.workers {
		w := decoder.NewWorker(i, cfg.binding, s.reports, s.logger, cfg.debug)
		s.workers[i] = w
		g.Go(func() error { return w.Run(ctx) })
	}
	g.Go(s.run)
	s.group = g

	level.Info(s.logger).Log("msg", "decompression service started", "pool_size", poolSize)

	return s, nil
}

// PoolSize returns the number of workers.
func (s *Service) PoolSize() int {
	return s.poolSize
}

// Ready is closed once every worker has started. Requests submitted earlier
// are queued, not lost.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Submit validates req and queues it.
//
// An invalid request gets an already rejected Future and leaves the queue and
// pool untouched. The returned Future resolves with an Output whose Values
// hold every band in order, or with an error wrapping errs.ErrDecodeFailed
// when any band failed.
func (s *Service) Submit(req *raster.Request) *Future {
	f := newFuture()

	if err := s.validate(req); err != nil {
		s.metrics.JobsCompleted.WithLabelValues(resultRejected).Inc()
		level.Debug(s.logger).Log("msg", "request rejected", "request", f.id, "err", err)
		f.reject(err)

		return f
	}

	j := &job{req: req, future: f, submitted: time.Now()}

	select {
	case s.submits <- j:
		s.metrics.JobsSubmitted.Inc()
	case <-s.stopped:
		s.metrics.JobsCompleted.WithLabelValues(resultClosed).Inc()
		f.reject(errs.ErrServiceClosed)
	}

	return f
}

// DecompressRasterData decodes every subset of msg and returns a copy whose
// ImageData is a single little-endian float32 buffer covering the whole tile.
//
// Validation errors are returned before anything is queued, in this order:
// subset counts (errs.ErrMismatchedSubsetCount), compression
// (errs.ErrUnsupportedCompression), geometry and NaN encodings.
func (s *Service) DecompressRasterData(ctx context.Context, msg *raster.ImageData) (*raster.ImageData, error) {
	req, err := raster.ParseRequest(msg, s.poolSize)
	if err != nil {
		s.metrics.JobsCompleted.WithLabelValues(resultRejected).Inc()
		return nil, err
	}

	out, err := s.Submit(req).Wait(ctx)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	return msg.WithDecoded(out), nil
}

// Stats returns a snapshot of the pool. After Close it reports StateClosed.
func (s *Service) Stats() Stats {
	reply := make(chan Stats, 1)

	select {
	case s.stats <- reply:
		return <-reply
	case <-s.stopped:
		return Stats{State: StateClosed}
	}
}

// Close stops accepting requests and rejects queued ones with
// errs.ErrServiceClosed. The active request, if any, runs to completion
// before the workers stop. Close blocks until every goroutine has exited and
// is safe to call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
	})

	return s.group.Wait()
}

func (s *Service) validate(req *raster.Request) error {
	if req == nil || req.Bands() == 0 {
		return fmt.Errorf("%w: no subsets", errs.ErrMismatchedSubsetCount)
	}
	if n := req.Bands(); n > s.poolSize {
		return fmt.Errorf("%w: %d subsets exceed %d workers", errs.ErrMismatchedSubsetCount, n, s.poolSize)
	}
	if req.Codec != format.CodecFPQ {
		return fmt.Errorf("%w: codec %s", errs.ErrUnsupportedCompression, req.Codec)
	}

	for i, sub := range req.Subsets {
		if !format.ValidPrecision(sub.Precision) {
			return fmt.Errorf("%w: band %d precision %d", errs.ErrUnsupportedCompression, i, sub.Precision)
		}
	}

	for i, sub := range req.Subsets {
		switch {
		case sub.Width <= 0 || sub.Height <= 0:
			return fmt.Errorf("%w: band %d is %dx%d", errs.ErrInvalidDimensions, i, sub.Width, sub.Height)
		case sub.Pixels() > s.cfg.maxBandPixels:
			return fmt.Errorf("%w: band %d has %d pixels, limit %d", errs.ErrBufferLimit, i, sub.Pixels(), s.cfg.maxBandPixels)
		}
	}

	return nil
}

// run is the orchestrator loop.
func (s *Service) run() error {
	defer close(s.stopped)

	closing := s.closing
	for {
		select {
		case rep := <-s.reports:
			s.handleReport(rep)
		case j := <-s.submits:
			s.enqueue(j)
		case reply := <-s.stats:
			reply <- s.snapshot()
		case <-closing:
			closing = nil
			s.beginDrain()
		}

		if s.draining && s.active == nil {
			s.shutdown()
			return nil
		}
	}
}

func (s *Service) enqueue(j *job) {
	s.seq++
	j.seq = s.seq

	if s.draining {
		s.finish(j, nil, errs.ErrServiceClosed, resultClosed)
		return
	}

	if s.state == StateFree {
		s.dispatch(j)
		return
	}

	s.queue = append(s.queue, j)
	s.metrics.QueueDepth.Set(float64(len(s.queue)))
	level.Debug(s.logger).Log("msg", "request queued", "request", j.future.id, "queue_length", len(s.queue))
}

// next dispatches the oldest queued job, or marks the pool free.
func (s *Service) next() {
	if len(s.queue) == 0 {
		s.state = StateFree
		return
	}

	j := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.metrics.QueueDepth.Set(float64(len(s.queue)))

	s.dispatch(j)
}

func (s *Service) dispatch(j *job) {
	s.state = StateBusy
	s.active = j

	level.Debug(s.logger).Log(
		"msg", "dispatching request",
		"request", j.future.id,
		"bands", j.req.Bands(),
		"queued_for", time.Since(j.submitted),
	)

	for i, sub := range j.req.Subsets {
		sl := &s.slots[i]
		sl.ready = false
		sl.produced = 0
		sl.err = nil

		pixels := sub.Pixels()
		if sl.input.Load(sub.Data, pixels*4) {
			s.logGrow(i, "input", sl.inputCap, sl.input.Cap())
		}
		if sl.output.Reserve(pixels) {
			s.logGrow(i, "output", sl.outputCap*4, sl.output.Cap()*4)
		}
		sl.inputCap = sl.input.Cap()
		sl.outputCap = sl.output.Cap()

		instr := decoder.Instruction{
			Job:          j.seq,
			Band:         i,
			Input:        sl.input,
			Output:       sl.output,
			SubsetLength: len(sub.Data),
			Width:        sub.Width,
			Height:       sub.Height,
			Precision:    sub.Precision,
			NaNRuns:      sub.NaNRuns,
			Range:        sub.Range,
		}
		sl.input, sl.output = nil, nil

		s.workers[i].Post(instr)
	}
}

func (s *Service) logGrow(worker int, buffer string, from, to int) {
	s.metrics.BufferGrows.WithLabelValues(buffer).Inc()
	level.Debug(s.logger).Log(
		"msg", "allocating new buffer for worker",
		"worker", worker,
		"buffer", buffer,
		"from_mb", fmt.Sprintf("%.2f", float64(from)*1e-6),
		"to_mb", fmt.Sprintf("%.2f", float64(to)*1e-6),
	)
}

func (s *Service) handleReport(rep decoder.Report) {
	switch rep.Kind {
	case decoder.KindReady:
		s.readyCount++
		if s.readyCount == s.poolSize && s.state == StateStarting {
			close(s.ready)
			level.Debug(s.logger).Log("msg", "all workers ready", "queue_length", len(s.queue))
			s.next()
		}

	case decoder.KindDecompressed:
		if s.active == nil || rep.Job != s.active.seq {
			level.Warn(s.logger).Log("msg", "stray worker report", "worker", rep.Worker, "job", rep.Job)
			return
		}

		sl := &s.slots[rep.Worker]
		sl.input = rep.Input
		sl.output = rep.Output
		sl.produced = rep.Produced
		sl.err = rep.Err
		sl.ready = true

		s.metrics.BandDecodeSeconds.Observe(rep.Elapsed.Seconds())

		if !s.allReady() {
			return
		}
		s.complete()
	}
}

// allReady reports whether every slot used by the active job has reported.
func (s *Service) allReady() bool {
	for i := range s.active.req.Bands() {
		if !s.slots[i].ready {
			return false
		}
	}

	return true
}

// complete reassembles the active job, starts the next one and resolves the
// finished job's future.
func (s *Service) complete() {
	j := s.active
	n := j.req.Bands()

	var (
		out *raster.Output
		err error
	)

	for i := range n {
		if s.slots[i].err != nil {
			err = fmt.Errorf("%w: band %d: %w", errs.ErrDecodeFailed, i, s.slots[i].err)
			break
		}
	}

	if err == nil {
		out = s.reassemble(j)
	}

	s.active = nil
	s.next()

	if err != nil {
		level.Warn(s.logger).Log("msg", "request failed", "request", j.future.id, "err", err)
		s.finish(j, nil, err, resultFailed)

		return
	}

	s.metrics.DecodedBytes.Add(float64(len(out.Values) * 4))
	level.Debug(s.logger).Log(
		"msg", "request decompressed",
		"request", j.future.id,
		"pixels", len(out.Values),
		"elapsed", time.Since(j.submitted),
	)
	s.finish(j, out, nil, resultSuccess)
}

// reassemble concatenates the bands of j in band-index order.
func (s *Service) reassemble(j *job) *raster.Output {
	n := j.req.Bands()
	lengths := make([]int, n)
	total := 0
	for i := range n {
		lengths[i] = s.slots[i].produced
		total += lengths[i]
	}

	values, release := pool.GetFloat32Slice(total)
	offset := 0
	for i := range n {
		offset += copy(values[offset:], s.slots[i].output.Values(lengths[i]))
	}

	return raster.NewOutput(values, j.req.Width, j.req.Height, lengths, release)
}

func (s *Service) finish(j *job, out *raster.Output, err error, result string) {
	s.metrics.JobsCompleted.WithLabelValues(result).Inc()
	j.future.resolve(out, err)
}

func (s *Service) beginDrain() {
	s.draining = true

	for _, j := range s.queue {
		s.finish(j, nil, errs.ErrServiceClosed, resultClosed)
	}
	if len(s.queue) > 0 {
		level.Info(s.logger).Log("msg", "rejected queued requests on close", "count", len(s.queue))
	}
	s.queue = nil
	s.metrics.QueueDepth.Set(0)
}

func (s *Service) shutdown() {
	for _, w := range s.workers {
		w.Stop()
	}
	s.state = StateClosed
	level.Info(s.logger).Log("msg", "decompression service stopped")
}

func (s *Service) snapshot() Stats {
	st := Stats{
		State:       s.state,
		QueueLength: len(s.queue),
		Slots:       make([]SlotStats, len(s.slots)),
	}
	for i, sl := range s.slots {
		st.Slots[i] = SlotStats{InputCap: sl.inputCap, OutputCap: sl.outputCap, Ready: sl.ready}
	}

	return st
}
