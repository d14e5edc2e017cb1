// Package distmat reads and writes pairwise distance matrices in the plain
// text layout used by the aligner:
//
//	3
//	0 0.00000 0.41200 0.50000
//	1 0.41200 0.00000 0.38000
//	2 0.50000 0.38000 0.00000
//
// The first line is the sequence count. Each row starts with the
// zero-based sequence index, followed by one value per sequence.
package distmat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"
)

// Precision is the number of decimals written per value.
const Precision = 5

// Dense returns m as a *mat.Dense. A *mat.Dense is returned as-is; any other
// implementation is copied.
func Dense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

// Square returns the dimension of m, or an error when m is not square.
func Square(m mat.Matrix) (int, error) {
	r, c := m.Dims()
	if r != c {
		return 0, fmt.Errorf("distance matrix must be square, got %dx%d", r, c)
	}
	return r, nil
}

// Write emits m in the aligner's text format.
func Write(w io.Writer, m mat.Matrix) error {
	n, err := Square(m)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", n)
	for i := 0; i < n; i++ {
		bw.WriteString(strconv.Itoa(i))
		for j := 0; j < n; j++ {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(m.At(i, j), 'f', Precision, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Read parses the aligner's text format. The count header is checked against
// the number of rows and the leading index column is dropped.
func Read(r io.Reader) (*mat.Dense, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	n := -1
	var data []float64
	rows, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if n < 0 {
			v, err := strconv.Atoi(fields[0])
			if err != nil || v <= 0 || len(fields) != 1 {
				return nil, fmt.Errorf("distmat: line %d: expected sequence count, got %q", lineNo, sc.Text())
			}
			n = v
			data = make([]float64, 0, n*n)
			continue
		}
		if rows == n {
			return nil, fmt.Errorf("distmat: line %d: more than %d rows", lineNo, n)
		}
		if len(fields) != n+1 {
			return nil, fmt.Errorf("distmat: line %d: expected %d values after the index, got %d", lineNo, n, len(fields)-1)
		}
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("distmat: line %d: %w", lineNo, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("distmat scan: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("distmat: empty input")
	}
	if rows != n {
		return nil, fmt.Errorf("distmat: header announces %d rows, found %d", n, rows)
	}
	return mat.NewDense(n, n, data), nil
}

// WriteFile writes m to path on fs.
func WriteFile(fs afero.Fs, path string, m mat.Matrix) error {
	fh, err := fs.Create(path)
	if err != nil {
		return err
	}
	if err := Write(fh, m); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// ReadFile reads a matrix from path on fs.
func ReadFile(fs afero.Fs, path string) (*mat.Dense, error) {
	fh, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh)
}
