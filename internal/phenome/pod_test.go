package phenome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCollapseWriteLog is spec scenario S3: a raw write log with a repeated
// destination address collapses to one record per address, in the order the
// surviving writes originally occurred.
func TestCollapseWriteLog(t *testing.T) {
	raw := []WriteRecord{
		{PC: 1, Dest: 0xA, Value: 1},
		{PC: 2, Dest: 0xB, Value: 2},
		{PC: 3, Dest: 0xA, Value: 3},
	}
	pod := NewPod(nil, nil, raw, nil)
	assert.Equal(t, []WriteRecord{
		{PC: 2, Dest: 0xB, Value: 2},
		{PC: 3, Dest: 0xA, Value: 3},
	}, pod.WriteLog)
}

// TestCollapseWriteLogDistinctDests is spec invariant 3: destinations in the
// collapsed log are pairwise distinct.
func TestCollapseWriteLogDistinctDests(t *testing.T) {
	raw := []WriteRecord{
		{PC: 1, Dest: 0xA, Value: 1},
		{PC: 2, Dest: 0xA, Value: 2},
		{PC: 3, Dest: 0xA, Value: 3},
		{PC: 4, Dest: 0xB, Value: 4},
	}
	pod := NewPod(nil, nil, raw, nil)
	seen := map[uint64]bool{}
	for _, wr := range pod.WriteLog {
		assert.False(t, seen[wr.Dest], "duplicate dest %#x in collapsed log", wr.Dest)
		seen[wr.Dest] = true
	}
	assert.Len(t, pod.WriteLog, 2)
}
