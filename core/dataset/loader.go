package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// ReadDelimited parses rows of numbers separated by sep, one row per line.
// Blank lines and lines starting with '#' are ignored. A zero sep means tab.
func ReadDelimited(r io.Reader, sep rune) (*Dataset, error) {
	if sep == 0 {
		sep = '\t'
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset.ReadDelimited")
		}
		line, _ := cr.FieldPos(0)

		row := make([]float64, 0, len(record))
		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.ReadDelimited", fmt.Sprintf("line %d: invalid number %q", line, cell))
			}
			row = append(row, v)
		}
		if len(row) == 0 {
			continue
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, errors.Wrapf(errors.NewDimensionError("dataset.ReadDelimited", len(rows[0]), len(row), 1), "line %d", line)
		}
		rows = append(rows, row)
	}

	return FromRows(rows)
}

// LoadDelimited reads a tab separated file.
func LoadDelimited(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return ReadDelimited(f, '\t')
}

// ReadNpy reads a 2-D float64 array in NumPy .npy format. The last column is
// the target.
func ReadNpy(r io.Reader) (*Dataset, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadNpy")
	}
	if shape := npy.Header.Descr.Shape; len(shape) != 2 {
		return nil, errors.NewValueError("dataset.ReadNpy", fmt.Sprintf("expected a 2-D array, got shape %v", shape))
	}

	var m mat.Dense
	if err := npy.Read(&m); err != nil {
		return nil, errors.Wrap(err, "dataset.ReadNpy")
	}
	return FromDense(&m)
}

// LoadNpy reads a .npy file, see ReadNpy.
func LoadNpy(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return ReadNpy(f)
}

// Load picks the loader from the file extension: .npy or delimited text.
func Load(path string) (*Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".npy") {
		return LoadNpy(path)
	}
	return LoadDelimited(path)
}

// WriteNpy writes values as a 1-D .npy array.
func WriteNpy(w io.Writer, values []float64) error {
	if err := npyio.Write(w, values); err != nil {
		return errors.Wrap(err, "dataset.WriteNpy")
	}
	return nil
}
