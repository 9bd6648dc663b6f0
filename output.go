package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// accuracyPlot draws a crude vertical bar chart of per-epoch accuracies
// (0..1), one column per epoch.
func accuracyPlot(w io.Writer, values []float64) {
	const height = 10 // number of text rows
	n := len(values)
	if n == 0 {
		fmt.Fprintln(w, "no epochs to plot")
		return
	}
	var sb strings.Builder
	for row := height; row >= 1; row-- {
		threshold := float64(row) / float64(height)
		for _, v := range values {
			if v >= threshold {
				sb.WriteString("█")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat("─", n))
	sb.WriteByte('\n')
	// epoch numbers, 1-based, every 5 columns
	for i := range values {
		if i%5 == 0 {
			sb.WriteString(strconv.Itoa((i + 1) % 10))
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('\n')
	io.WriteString(w, sb.String())
}
