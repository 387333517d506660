package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadOptions controls how headers are resolved.
type ReadOptions struct {
	// Headers are candidate column layouts used when the file carries no
	// header line; the first whose length matches the field count wins.
	Headers [][]string
	// Comma forces comma separation; otherwise it is chosen by extension.
	Comma bool
}

// ReadFile opens path, decompressing .gz and .zst transparently.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decompress(f, path)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	defer r.Close()

	if strings.EqualFold(filepath.Ext(stripCompression(path)), ".csv") {
		opts.Comma = true
	}
	t, err := Read(r, opts)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", path, err)
	}
	return t, nil
}

// Read parses a numeric table. Lines starting with '#' are comments; the
// last comment before the data whose field count matches the data is taken
// as the header, as is a non-numeric first data line.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		header      []string
		lastComment []string
		rows        [][]float64
		width       = -1
		lineNo      int
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if rows == nil {
				lastComment = split(strings.TrimSpace(strings.TrimLeft(line, "#")), opts.Comma)
			}
			continue
		}

		fields := split(line, opts.Comma)
		values, ok := parseFloats(fields)
		if !ok {
			if rows == nil && header == nil {
				header = cleanNames(fields)
				continue
			}
			return nil, fmt.Errorf("line %d: non-numeric field in %q", lineNo, line)
		}

		if width < 0 {
			width = len(values)
		} else if len(values) != width {
			return nil, fmt.Errorf("line %d: %d fields, want %d", lineNo, len(values), width)
		}
		rows = append(rows, values)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if width < 0 {
		if header != nil {
			width = len(header)
		} else {
			return nil, fmt.Errorf("no data rows")
		}
	}

	if header == nil && len(lastComment) == width && !allNumeric(lastComment) {
		header = cleanNames(lastComment)
	}
	if header == nil {
		for _, h := range opts.Headers {
			if len(h) == width {
				header = h
				break
			}
		}
	}
	if header == nil {
		return nil, fmt.Errorf("cannot resolve header for %d columns", width)
	}
	if len(header) != width {
		return nil, fmt.Errorf("header has %d names, data has %d fields", len(header), width)
	}

	t := New()
	for j, name := range header {
		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i] = row[j]
		}
		if err := t.Add(name, col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func split(line string, comma bool) []string {
	if !comma {
		return strings.Fields(line)
	}
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseFloats(fields []string) ([]float64, bool) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func allNumeric(fields []string) bool {
	_, ok := parseFloats(fields)
	return ok
}

func cleanNames(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimLeft(f, "#")
	}
	return out
}
