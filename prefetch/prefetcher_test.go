package prefetch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bopsim/prefetch"
	"github.com/sarchlab/bopsim/stream"
)

// nopScheduler satisfies prefetch.EventScheduler for tests that never need
// the delay queue to drain.
type nopScheduler struct{}

func (nopScheduler) CurrentTime() sim.VTimeInSec { return 0 }
func (nopScheduler) Schedule(e sim.Event)        {}

var _ = Describe("Prefetcher", func() {
	Describe("before any learning", func() {
		It("should emit nothing", func() {
			config := prefetch.DefaultConfig()
			config.DelayQueueEnable = false
			p := prefetch.MustNew(config, nil)

			Expect(p.Predicting()).To(BeFalse())
			Expect(p.OnAccess(0x1000)).To(BeEmpty())
		})
	})

	Describe("on a constant-stride stream", func() {
		var (
			p      *prefetch.Prefetcher
			config prefetch.Config
		)

		BeforeEach(func() {
			config = prefetch.Config{
				ScoreMax:       32,
				RoundMax:       100,
				BadScore:       8,
				RREntries:      16,
				TagBits:        12,
				OffsetListSize: 6,
				Degree:         2,
				BlockSize:      64,
			}
			p = prefetch.MustNew(config, nil)

			// A, A+3*64, A+6*64, ... long enough for several phases.
			for _, addr := range stream.Stride(0x100000, 3, 64, 2000) {
				p.OnAccess(addr)
			}
		})

		It("should lock onto the stride as the best offset", func() {
			Expect(p.Predicting()).To(BeTrue())
			Expect(p.BestOffset()).To(Equal(int64(3)))
		})

		It("should emit exactly degree predictions at the stride", func() {
			x := uint64(0x400000)
			predictions := p.OnAccess(x)

			Expect(predictions).To(HaveLen(2))
			Expect(predictions[0].Addr).To(Equal(x + 192))
			Expect(predictions[1].Addr).To(Equal(x + 384))
			Expect(predictions[0].Priority).To(Equal(0))
			Expect(predictions[1].Priority).To(Equal(0))
		})

		It("should count issued prefetches", func() {
			stats := p.Stats()
			Expect(stats.PrefetchesIssued).To(BeNumerically(">", 0))
			Expect(stats.PhasesEnabled).To(BeNumerically(">", 0))
		})

		It("should return to the initial state on Reset", func() {
			p.Reset()
			Expect(p.Predicting()).To(BeFalse())
			Expect(p.BestOffset()).To(Equal(int64(1)))
			Expect(p.Stats()).To(Equal(prefetch.Statistics{}))
			Expect(p.OnAccess(0x1000)).To(BeEmpty())
		})
	})

	Describe("on a uniformly random stream", func() {
		It("should never gain confidence", func() {
			config := prefetch.Config{
				ScoreMax:              31,
				RoundMax:              10,
				BadScore:              10,
				RREntries:             32,
				TagBits:               20,
				OffsetListSize:        46,
				NegativeOffsetsEnable: true,
				Degree:                1,
				BlockSize:             64,
			}
			p := prefetch.MustNew(config, nil)

			n := int(config.RoundMax * config.OffsetListSize)
			for _, addr := range stream.Random(42, 64, n) {
				predictions := p.OnAccess(addr)
				Expect(predictions).To(BeEmpty())
			}

			Expect(p.Predicting()).To(BeFalse())
			Expect(p.Stats().PrefetchesIssued).To(BeZero())
		})
	})

	Describe("fill feedback", func() {
		It("should ignore fills that were not hardware prefetches", func() {
			config := prefetch.DefaultConfig()
			config.DelayQueueEnable = false
			p := prefetch.MustNew(config, nil)

			p.OnFill(0x2000, false)

			stats := p.Stats()
			Expect(stats.FillsRecorded).To(BeZero())
			Expect(stats.FillsIgnored).To(Equal(uint64(1)))
		})

		It("should ignore hardware-prefetch fills while prediction is disabled", func() {
			config := prefetch.DefaultConfig()
			config.DelayQueueEnable = false
			p := prefetch.MustNew(config, nil)

			p.OnFill(0x2000, true)

			stats := p.Stats()
			Expect(stats.FillsRecorded).To(BeZero())
			Expect(stats.FillsIgnored).To(Equal(uint64(1)))
		})

		It("should record hardware-prefetch fills while predicting", func() {
			config := prefetch.Config{
				ScoreMax:       32,
				RoundMax:       100,
				BadScore:       8,
				RREntries:      16,
				TagBits:        12,
				OffsetListSize: 6,
				Degree:         1,
				BlockSize:      64,
			}
			p := prefetch.MustNew(config, nil)
			for _, addr := range stream.Stride(0x100000, 3, 64, 2000) {
				p.OnAccess(addr)
			}
			Expect(p.Predicting()).To(BeTrue())

			p.OnFill(0x2000, true)
			Expect(p.Stats().FillsRecorded).To(Equal(uint64(1)))
		})
	})
})
