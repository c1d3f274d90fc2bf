package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := map[string]int{"A": 1}
	b := map[string]int{"B": 2, "C": 3}

	got := maps.Collect(IterSeq2Concat(maps.All(a), maps.All(b)))
	assert.Equal(map[string]int{"A": 1, "B": 2, "C": 3}, got)

	// Later sequences win on a collect.
	got = maps.Collect(IterSeq2Concat(maps.All(a), maps.All(map[string]int{"A": 9})))
	assert.Equal(map[string]int{"A": 9}, got)

	var count int
	for range IterSeq2Concat(maps.All(a), maps.All(b)) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)

	assert.Equal(0, len(maps.Collect(IterSeq2Concat[string, int]())))
}
