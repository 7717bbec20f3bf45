package plot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ExportName is the file name for the exported curve at t.
func ExportName(t float64) string {
	return fmt.Sprintf("curve_t=%.2f.csv", t)
}

// WriteCSV writes the points of p as comma-separated x,y rows after a header
// line. Coordinates use the shortest formatting that parses back exactly.
func WriteCSV(w io.Writer, p Polyline) error {
	c := csv.NewWriter(w)
	if err := c.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, q := range p {
		row := []string{
			strconv.FormatFloat(q.X, 'g', -1, 64),
			strconv.FormatFloat(q.Y, 'g', -1, 64),
		}
		if err := c.Write(row); err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) (Polyline, error) {
	c := csv.NewReader(r)
	c.FieldsPerRecord = 2
	c.TrimLeadingSpace = true
	head, err := c.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plot: missing csv header")
		}
		return nil, fmt.Errorf("plot: reading csv header: %w", err)
	}
	if head[0] != "x" || head[1] != "y" {
		return nil, fmt.Errorf("plot: csv header is %q, want x,y", head)
	}
	var p Polyline
	for {
		row, err := c.Read()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("plot: reading csv: %w", err)
		}
		x, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("plot: csv row %d: %w", len(p)+1, err)
		}
		y, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("plot: csv row %d: %w", len(p)+1, err)
		}
		p = append(p, Point{X: x, Y: y})
	}
}
