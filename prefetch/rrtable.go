package prefetch

// rrWay selects one of the two recent-request tables.
type rrWay uint

const (
	// rrLeft records raw recently observed accesses.
	rrLeft rrWay = iota
	// rrRight records origins of confirmed-useful prefetch fills.
	rrRight
)

// rrTable is the pair of fixed-size recent-request tables. Slots hold
// truncated block-address tags and are overwritten in place; a stale tag
// that collides produces a bounded false positive rather than an error.
type rrTable struct {
	left  []uint64
	right []uint64

	logEntries uint
	logBlkSize uint
	tagMask    uint64
}

// newRRTable creates the two tables. entries must be a power of two and
// blockSize a power of two; callers validate both before construction.
func newRRTable(entries uint, tagBits uint, blockSize uint64) *rrTable {
	return &rrTable{
		left:       make([]uint64, entries),
		right:      make([]uint64, entries),
		logEntries: floorLog2(uint64(entries)),
		logBlkSize: floorLog2(blockSize),
		tagMask:    (1 << tagBits) - 1,
	}
}

// index maps an address to a slot. The block address is XORed with itself
// shifted right by log2(entries) for the left table and by twice that for
// the right table, decorrelating the two hash functions so the tables do
// not alias identically.
func (t *rrTable) index(addr uint64, way rrWay) uint {
	line := addr >> t.logBlkSize
	hash := line ^ (line >> (t.logEntries << way))
	hash &= (1 << t.logEntries) - 1
	return uint(hash) % uint(len(t.left))
}

// insert overwrites the slot for addr on the given way with tag.
func (t *rrTable) insert(addr uint64, tag uint64, way rrWay) {
	switch way {
	case rrLeft:
		t.left[t.index(addr, rrLeft)] = tag
	case rrRight:
		t.right[t.index(addr, rrRight)] = tag
	}
}

// test reports whether tag is stored anywhere in either table. The tables
// are small, so a full scan matches the intent of "seen anywhere recently".
func (t *rrTable) test(tag uint64) bool {
	for _, stored := range t.left {
		if stored == tag {
			return true
		}
	}
	for _, stored := range t.right {
		if stored == tag {
			return true
		}
	}
	return false
}

// tag extracts the low tagBits bits of the block address of addr.
func (t *rrTable) tag(addr uint64) uint64 {
	return (addr >> t.logBlkSize) & t.tagMask
}

// reset clears both tables.
func (t *rrTable) reset() {
	for i := range t.left {
		t.left[i] = 0
	}
	for i := range t.right {
		t.right[i] = 0
	}
}
