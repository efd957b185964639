package prefetch_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bopsim/prefetch"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("should be accepted by New", func() {
			p, err := prefetch.New(prefetch.DefaultConfig(), nopScheduler{})
			Expect(err).NotTo(HaveOccurred())
			Expect(p).NotTo(BeNil())
		})

		It("should carry the expected defaults", func() {
			config := prefetch.DefaultConfig()
			Expect(config.ScoreMax).To(Equal(uint(31)))
			Expect(config.RoundMax).To(Equal(uint(100)))
			Expect(config.BadScore).To(Equal(uint(10)))
			Expect(config.RREntries).To(Equal(uint(64)))
			Expect(config.TagBits).To(Equal(uint(12)))
			Expect(config.OffsetListSize).To(Equal(uint(46)))
			Expect(config.NegativeOffsetsEnable).To(BeTrue())
			Expect(config.Degree).To(Equal(1))
			Expect(config.BlockSize).To(Equal(uint64(64)))
			Expect(config.DelayQueueEnable).To(BeTrue())
			Expect(config.DelayQueueSize).To(Equal(uint(15)))
		})
	})

	Describe("LoadConfig", func() {
		It("should round-trip through a JSON file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "predictor.json")

			config := prefetch.DefaultConfig()
			config.ScoreMax = 40
			config.Degree = 4
			config.NegativeOffsetsEnable = false
			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := prefetch.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(config))
		})

		It("should fail for a missing file", func() {
			_, err := prefetch.LoadConfig("/nonexistent/predictor.json")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("construction validation", func() {
		var config prefetch.Config

		BeforeEach(func() {
			config = prefetch.DefaultConfig()
			config.DelayQueueEnable = false
		})

		It("should reject RR entry counts that are not powers of two", func() {
			config.RREntries = 15
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("power of 2"))
		})

		It("should reject block sizes that are not powers of two", func() {
			config.BlockSize = 100
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject negative offsets with an odd list size", func() {
			config.NegativeOffsetsEnable = true
			config.OffsetListSize = 7
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject non-positive degrees", func() {
			config.Degree = 0
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())

			config.Degree = -1
			_, err = prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty offset list", func() {
			config.NegativeOffsetsEnable = false
			config.OffsetListSize = 0
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should require a scheduler when the delay queue is enabled", func() {
			config.DelayQueueEnable = true
			_, err := prefetch.New(config, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should panic in MustNew on an invalid configuration", func() {
			config.RREntries = 15
			Expect(func() {
				prefetch.MustNew(config, nil)
			}).To(Panic())
		})
	})
})
