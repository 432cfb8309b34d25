package board

import "hash/fnv"

// Palette is the cluster column palette shared with the web client.
var Palette = []string{
	"#8b5cf6", "#06b6d4", "#22c55e", "#f59e0b", "#ef4444",
	"#14b8a6", "#eab308", "#3b82f6", "#d946ef", "#f97316",
}

// ClusterColors assigns a palette index to each cluster title so that
// adjacent columns never share a color. It is a pure function of the full
// ordered title list: the same titles in the same order always produce the
// same assignment, with no state carried between calls.
func ClusterColors(titles []string) []int {
	out := make([]int, len(titles))
	for i, title := range titles {
		idx := titleHash(title) % len(Palette)
		if i > 0 && idx == out[i-1] {
			idx = (idx + 1) % len(Palette)
		}
		out[i] = idx
	}
	return out
}

func titleHash(title string) int {
	h := fnv.New32a()
	h.Write([]byte(title))
	return int(h.Sum32() & 0x7fffffff)
}
