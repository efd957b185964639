// Package stream generates synthetic memory-access address streams for
// driving and validating the prefetch predictor.
package stream

import "math/rand"

// Stride returns n addresses starting at start, each strideBlocks blocks
// after the previous one. strideBlocks may be negative.
func Stride(start uint64, strideBlocks int64, blockSize uint64, n int) []uint64 {
	addrs := make([]uint64, n)
	step := strideBlocks * int64(blockSize)
	addr := int64(start)
	for i := range addrs {
		addrs[i] = uint64(addr)
		addr += step
	}
	return addrs
}

// Random returns n uniformly random block-aligned addresses from a seeded
// source. The stream has no repeating stride, so a correctly functioning
// predictor should never gain confidence on it.
func Random(seed int64, blockSize uint64, n int) []uint64 {
	r := rand.New(rand.NewSource(seed))
	addrs := make([]uint64, n)
	for i := range addrs {
		addrs[i] = r.Uint64() &^ (blockSize - 1)
	}
	return addrs
}
