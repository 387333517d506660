// Package viz provides a terminal browser for analysis result tables.
//
// The browser is a Bubble Tea program listing every column of a result
// table with a sparkline preview. Selecting a column opens a full ASCII
// plot with summary statistics.
//
// # Key Bindings
//
//	j/k, up/down - Move the cursor
//	g/G          - Jump to first/last column
//	enter        - Plot the selected column
//	t            - Cycle color themes
//	esc          - Back to the column list
//	q            - Quit
package viz
