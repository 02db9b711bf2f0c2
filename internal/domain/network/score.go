package network

import "math"

// AverageScore is the rounded arithmetic mean of scores with nil counted as 0.
// An empty slice averages to 0.
func AverageScore(scores []*int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		if s != nil {
			sum += *s
		}
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
