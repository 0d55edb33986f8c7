package component

import (
	"fmt"
	"testing"
)

// mkElements creates n elements keyed e0..e{n-1}.
func mkElements(t *testing.T, n int) []*Element {
	t.Helper()
	out := make([]*Element, n)
	for i := range out {
		out[i] = NewElement(fmt.Sprintf("e%d", i))
	}
	return out
}

func keysOf(items []*Element) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.Key())
	}
	return out
}

func bunchKeys(bunches []*Bunch) []string {
	out := make([]string, 0, len(bunches))
	for _, b := range bunches {
		out = append(out, b.Key())
	}
	return out
}
