package table

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteFile writes t to path. CSV is used for .csv files, tab separation
// otherwise; .gz and .zst suffixes compress the output.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := compress(f, path)
	if err != nil {
		return err
	}

	sep := "\t"
	if strings.EqualFold(filepath.Ext(stripCompression(path)), ".csv") {
		sep = ","
	}
	if err := Write(w, t, sep); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Write emits a header line followed by one line per row.
func Write(w io.Writer, t *Table, sep string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.names, sep) + "\n"); err != nil {
		return err
	}

	buf := make([]byte, 0, 32)
	for i := 0; i < t.Len(); i++ {
		for j, name := range t.names {
			if j > 0 {
				bw.WriteString(sep)
			}
			buf = strconv.AppendFloat(buf[:0], t.cols[name][i], 'g', -1, 64)
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
