// Package prefetch implements a best-offset hardware prefetch predictor.
//
// The predictor observes a stream of memory-access addresses and learns a
// constant block stride (the "best offset") by scoring candidate offsets
// against two hashed recent-request tables. Once a candidate's score clears
// a confidence threshold, the predictor emits speculative fetch addresses
// ahead of demand. Learning never stops: each phase can re-validate or
// revoke the committed offset.
package prefetch

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// EventScheduler is the scheduling capability the predictor needs from the
// owning discrete-event engine. Akita's sim.Engine satisfies it. It is only
// required when the delay queue is enabled.
type EventScheduler interface {
	CurrentTime() sim.VTimeInSec
	Schedule(e sim.Event)
}

// Prediction is one predicted address. Priority is always 0, the lowest,
// for every address this predictor emits.
type Prediction struct {
	Addr     uint64
	Priority int
}

// Statistics holds predictor counters.
type Statistics struct {
	// Accesses is the number of observed accesses.
	Accesses uint64
	// ScoreHits is the number of recent-request table hits during learning.
	ScoreHits uint64
	// PrefetchesIssued is the total number of predicted addresses emitted.
	PrefetchesIssued uint64
	// Phases is the number of completed learning phases.
	Phases uint64
	// PhasesEnabled counts phases that committed an offset and enabled
	// prediction.
	PhasesEnabled uint64
	// PhasesDisabled counts phases that ended below the confidence
	// threshold and disabled prediction.
	PhasesDisabled uint64
	// DelayQueueDrops counts addresses dropped because the delay queue
	// was full.
	DelayQueueDrops uint64
	// FillsRecorded counts prefetch fills recorded into the right table.
	FillsRecorded uint64
	// FillsIgnored counts fill notifications that were not recorded.
	FillsIgnored uint64
}

// ScoreHitRate returns the fraction of accesses whose learning step hit a
// recent-request table, as a percentage.
func (s Statistics) ScoreHitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.ScoreHits) / float64(s.Accesses) * 100
}

// PrefetchesPerAccess returns the average number of predictions emitted per
// observed access.
func (s Statistics) PrefetchesPerAccess() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.PrefetchesIssued) / float64(s.Accesses)
}

// Prefetcher is a best-offset prefetch predictor for a single access
// stream. All state is owned exclusively by one instance and mutated only
// from the single-threaded event model; it is not safe for concurrent use.
type Prefetcher struct {
	config Config
	sched  EventScheduler

	offsets *offsetList
	rr      *rrTable
	queue   *delayQueue

	logBlkSize uint

	round           uint
	bestScore       uint
	phaseBestOffset int64
	bestOffset      int64
	predicting      bool

	drainScheduled bool

	stats Statistics
}

// New creates a predictor. It returns an error for any configuration that
// cannot produce meaningful predictions; such errors are not recoverable.
// sched may be nil when the delay queue is disabled.
func New(config Config, sched EventScheduler) (*Prefetcher, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("prefetch: %w", err)
	}
	if config.DelayQueueEnable && sched == nil {
		return nil, fmt.Errorf("prefetch: delay queue enabled without an event scheduler")
	}

	offsets, err := newOffsetList(config.OffsetListSize, config.NegativeOffsetsEnable)
	if err != nil {
		return nil, fmt.Errorf("prefetch: %w", err)
	}

	return &Prefetcher{
		config:     config,
		sched:      sched,
		offsets:    offsets,
		rr:         newRRTable(config.RREntries, config.TagBits, config.BlockSize),
		queue:      newDelayQueue(config.DelayQueueSize),
		logBlkSize: floorLog2(config.BlockSize),
		bestOffset: 1,
	}, nil
}

// MustNew is like New but panics on configuration errors, matching the
// fatal construction semantics of the hardware model.
func MustNew(config Config, sched EventScheduler) *Prefetcher {
	p, err := New(config, sched)
	if err != nil {
		panic(err)
	}
	return p
}

// OnAccess observes one memory access and returns the predicted addresses,
// possibly none. It records the address into history, performs one offset
// scoring step, and generates predictions when prediction is enabled.
func (p *Prefetcher) OnAccess(addr uint64) []Prediction {
	p.stats.Accesses++

	if p.config.DelayQueueEnable {
		p.insertIntoDelayQueue(addr)
	} else {
		p.rr.insert(addr, p.rr.tag(addr), rrLeft)
	}

	p.learn(addr)

	if !p.predicting {
		return nil
	}

	predictions := make([]Prediction, 0, p.config.Degree)
	for i := 1; i <= p.config.Degree; i++ {
		target := uint64(int64(addr) + (int64(i)*p.bestOffset)<<p.logBlkSize)
		predictions = append(predictions, Prediction{Addr: target})
	}
	p.stats.PrefetchesIssued += uint64(len(predictions))
	return predictions
}

// OnFill notifies the predictor that a fetch completed. Only fills of
// hardware-initiated prefetches are recorded, and only while prediction is
// enabled: the origin tag (fill tag minus the committed offset) enters the
// right table as confirmed useful.
func (p *Prefetcher) OnFill(addr uint64, hwPrefetch bool) {
	if !hwPrefetch || !p.predicting {
		p.stats.FillsIgnored++
		return
	}

	tag := p.rr.tag(addr)
	p.rr.insert(addr, uint64(int64(tag)-p.bestOffset), rrRight)
	p.stats.FillsRecorded++
}

// learn performs one offset-scoring step for the observed address and runs
// the phase state machine.
func (p *Prefetcher) learn(addr uint64) {
	entry := p.offsets.current()

	// Subtract the offset at full-address granularity before tagging, to
	// avoid unsigned underflow at the tag granularity.
	lookupAddr := uint64(int64(addr) - entry.offset<<p.logBlkSize)
	lookupTag := p.rr.tag(lookupAddr)

	if p.rr.test(lookupTag) {
		p.stats.ScoreHits++
		entry.score++
		if entry.score > p.bestScore {
			p.bestScore = entry.score
			p.phaseBestOffset = entry.offset
		}
	}

	if p.offsets.advance() {
		p.round++
	}

	if p.bestScore >= p.config.ScoreMax || p.round >= p.config.RoundMax {
		p.endPhase()
	}
}

// endPhase commits or revokes prediction, then resets the learning state
// unconditionally. A disabled phase forgets its near-winner: every phase
// re-explores from scratch.
func (p *Prefetcher) endPhase() {
	p.round = 0
	p.stats.Phases++

	if p.bestScore > p.config.BadScore {
		p.bestOffset = p.phaseBestOffset
		p.predicting = true
		p.stats.PhasesEnabled++
	} else {
		p.predicting = false
		p.stats.PhasesDisabled++
	}

	p.offsets.resetScores()
	p.bestScore = 0
	p.phaseBestOffset = 0
}

// insertIntoDelayQueue buffers addr for DelayQueueDelay before it enters
// the left table, arming the drain event if it is not already scheduled.
func (p *Prefetcher) insertIntoDelayQueue(addr uint64) {
	due := p.sched.CurrentTime() + p.config.DelayQueueDelay

	if !p.queue.push(addr, due) {
		p.stats.DelayQueueDrops++
		return
	}

	if !p.drainScheduled {
		p.sched.Schedule(drainEvent{time: due, handler: p})
		p.drainScheduled = true
	}
}

// Handle drains every due delay-queue entry into the left table in FIFO
// order, then re-arms the drain event for the new head if entries remain.
// It implements sim.Handler.
func (p *Prefetcher) Handle(e sim.Event) error {
	now := e.Time()

	for !p.queue.empty() && p.queue.front().due <= now {
		entry := p.queue.pop()
		p.rr.insert(entry.addr, p.rr.tag(entry.addr), rrLeft)
	}

	if p.queue.empty() {
		p.drainScheduled = false
		return nil
	}

	p.sched.Schedule(drainEvent{time: p.queue.front().due, handler: p})
	return nil
}

// Predicting reports whether prediction is currently enabled.
func (p *Prefetcher) Predicting() bool {
	return p.predicting
}

// BestOffset returns the committed best offset in blocks. It is meaningful
// for prediction only while Predicting is true.
func (p *Prefetcher) BestOffset() int64 {
	return p.bestOffset
}

// Config returns the predictor configuration.
func (p *Prefetcher) Config() Config {
	return p.config
}

// Stats returns the predictor statistics.
func (p *Prefetcher) Stats() Statistics {
	return p.stats
}

// Reset restores the predictor to its post-construction state. A drain
// event already in flight finds an empty queue and is not re-armed.
func (p *Prefetcher) Reset() {
	p.offsets.resetScores()
	p.offsets.cursor = 0
	p.rr.reset()
	p.queue.reset()
	p.round = 0
	p.bestScore = 0
	p.phaseBestOffset = 0
	p.bestOffset = 1
	p.predicting = false
	p.stats = Statistics{}
}

// drainEvent wakes the predictor to move due delay-queue entries into the
// left recent-request table.
type drainEvent struct {
	time    sim.VTimeInSec
	handler sim.Handler
}

func (e drainEvent) Time() sim.VTimeInSec { return e.time }
func (e drainEvent) Handler() sim.Handler { return e.handler }
func (e drainEvent) IsSecondary() bool    { return false }
