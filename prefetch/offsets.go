package prefetch

import "fmt"

// offsetEntry pairs a candidate offset (in blocks) with its accumulated
// score for the current learning phase.
type offsetEntry struct {
	offset int64
	score  uint
}

// offsetList is the ordered, cyclic set of candidate offsets under
// evaluation. The cursor is an explicit index so that completing a full
// cycle is an explicit signal rather than an iterator comparison.
type offsetList struct {
	entries []offsetEntry
	cursor  int
}

// newOffsetList generates size candidate offsets. Following the original
// best-offset paper, candidates are the integers of the form 2^i * 3^j * 5^k
// (i,j,k >= 0), found by testing successive integers and dividing out the
// factors 2, 3 and 5. When negatives are enabled, each admitted offset is
// followed immediately by its negation, and size must be even.
func newOffsetList(size uint, negatives bool) (*offsetList, error) {
	if size == 0 {
		return nil, fmt.Errorf("offset list size must be strictly greater than zero")
	}
	if negatives && size%2 != 0 {
		return nil, fmt.Errorf("negative offsets enabled with odd offset list size (%d)", size)
	}

	l := &offsetList{entries: make([]offsetEntry, 0, size)}

	for candidate := int64(1); len(l.entries) < int(size); candidate++ {
		reduced := candidate
		for _, factor := range []int64{2, 3, 5} {
			for reduced%factor == 0 {
				reduced /= factor
			}
		}
		if reduced != 1 {
			continue
		}

		l.entries = append(l.entries, offsetEntry{offset: candidate})
		if negatives {
			l.entries = append(l.entries, offsetEntry{offset: -candidate})
		}
	}

	return l, nil
}

// current returns the candidate at the cursor.
func (l *offsetList) current() *offsetEntry {
	return &l.entries[l.cursor]
}

// advance moves the cursor to the next candidate. It returns true when the
// cursor wrapped back to the start, i.e. a full cycle completed.
func (l *offsetList) advance() bool {
	l.cursor++
	if l.cursor == len(l.entries) {
		l.cursor = 0
		return true
	}
	return false
}

// resetScores zeroes the score of every candidate.
func (l *offsetList) resetScores() {
	for i := range l.entries {
		l.entries[i].score = 0
	}
}
