package storage

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// WriteSummary writes a heading followed by one "key: value" line per
// average. Keys follow order; keys missing from order are appended sorted.
func WriteSummary(w io.Writer, heading string, order []string, averages map[string]float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, heading)

	seen := make(map[string]bool, len(order))
	for _, k := range order {
		v, ok := averages[k]
		if !ok {
			continue
		}
		seen[k] = true
		fmt.Fprintf(bw, "%s: %g\n", k, v)
	}

	var rest []string
	for k := range averages {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fmt.Fprintf(bw, "%s: %g\n", k, averages[k])
	}
	return bw.Flush()
}
