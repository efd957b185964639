package prefetch

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"os"

	"github.com/sarchlab/akita/v4/sim"
)

// Config holds best-offset predictor parameters.
type Config struct {
	// ScoreMax ends a learning phase early once the best candidate offset
	// reaches this score. Default: 31.
	ScoreMax uint `json:"score_max"`

	// RoundMax ends a learning phase after this many full cycles through
	// the candidate offset list, regardless of score. Default: 100.
	RoundMax uint `json:"round_max"`

	// BadScore is the score a phase winner must strictly exceed for
	// prediction to be enabled. Default: 10.
	BadScore uint `json:"bad_score"`

	// RREntries is the number of slots in each recent-request table.
	// Must be a power of two. Default: 64.
	RREntries uint `json:"rr_entries"`

	// TagBits is the width of the address fingerprints stored in the
	// recent-request tables. Default: 12.
	TagBits uint `json:"tag_bits"`

	// OffsetListSize is the number of candidate offsets to evaluate.
	// Must be even when NegativeOffsetsEnable is set. Default: 46.
	OffsetListSize uint `json:"offset_list_size"`

	// NegativeOffsetsEnable pairs every candidate offset with its
	// negation. Default: true.
	NegativeOffsetsEnable bool `json:"negative_offsets_enable"`

	// Degree is the number of predictions emitted per observed access
	// while prediction is enabled. Must be positive. Default: 1.
	Degree int `json:"degree"`

	// BlockSize in bytes (cache line size). Must be a power of two.
	// Default: 64.
	BlockSize uint64 `json:"block_size"`

	// DelayQueueEnable defers left-table insertion of observed addresses
	// by DelayQueueDelay, modeling request-to-fill latency. Default: true.
	DelayQueueEnable bool `json:"delay_queue_enable"`

	// DelayQueueSize is the delay queue capacity. Insertions into a full
	// queue are silently dropped. Default: 15.
	DelayQueueSize uint `json:"delay_queue_size"`

	// DelayQueueDelay is the time an address waits in the delay queue
	// before entering the left table, in simulated seconds.
	// Default: 60ns.
	DelayQueueDelay sim.VTimeInSec `json:"delay_queue_delay"`
}

// DefaultConfig returns the default predictor configuration.
func DefaultConfig() Config {
	return Config{
		ScoreMax:              31,
		RoundMax:              100,
		BadScore:              10,
		RREntries:             64,
		TagBits:               12,
		OffsetListSize:        46,
		NegativeOffsetsEnable: true,
		Degree:                1,
		BlockSize:             64,
		DelayQueueEnable:      true,
		DelayQueueSize:        15,
		DelayQueueDelay:       60e-9,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}

// validate checks the construction-time invariants. A Config that fails
// validation cannot produce meaningful predictions, so New refuses it.
func (c Config) validate() error {
	if !isPowerOfTwo(uint64(c.RREntries)) {
		return fmt.Errorf("number of RR entries (%d) is not a power of 2", c.RREntries)
	}
	if !isPowerOfTwo(c.BlockSize) {
		return fmt.Errorf("block size (%d) is not a power of 2", c.BlockSize)
	}
	if c.NegativeOffsetsEnable && c.OffsetListSize%2 != 0 {
		return fmt.Errorf("negative offsets enabled with odd offset list size (%d)", c.OffsetListSize)
	}
	if c.OffsetListSize == 0 {
		return fmt.Errorf("offset list size must be strictly greater than zero")
	}
	if c.Degree <= 0 {
		return fmt.Errorf("prefetch degree must be strictly greater than zero")
	}
	if c.DelayQueueEnable && c.DelayQueueSize == 0 {
		return fmt.Errorf("delay queue enabled with zero capacity")
	}
	return nil
}

// isPowerOfTwo reports whether n is a non-zero power of two.
func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// floorLog2 returns the floor of the base-2 logarithm of n. n must be
// non-zero.
func floorLog2(n uint64) uint {
	return uint(bits.Len64(n)) - 1
}
