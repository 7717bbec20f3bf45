package plot_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/implicit/plot"
)

func TestExportName(t *testing.T) {
	assert.Equal(t, "curve_t=5.00.csv", plot.ExportName(5))
	assert.Equal(t, "curve_t=-0.25.csv", plot.ExportName(-0.25))
	assert.Equal(t, "curve_t=3.33.csv", plot.ExportName(10.0/3))
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	err := plot.WriteCSV(&b, plot.Polyline{{X: 1, Y: -2.5}, {X: 0.1, Y: 1e-7}})
	require.NoError(t, err)
	assert.Equal(t, "x,y\n1,-2.5\n0.1,1e-07\n", b.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, plot.WriteCSV(&b, nil))
	assert.Equal(t, "x,y\n", b.String())
	p, err := plot.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestCSVRoundTrip(t *testing.T) {
	p := render(t, "x^2 + y^2 - t^2", plot.DefaultDomain, 300, 5).Primary()
	require.NotEmpty(t, p)
	p = append(p, plot.Point{X: math.Pi, Y: -math.SmallestNonzeroFloat64}, plot.Point{X: 1.0 / 3, Y: math.MaxFloat64})
	var b bytes.Buffer
	require.NoError(t, plot.WriteCSV(&b, p))
	got, err := plot.ReadCSV(&b)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("round trip changed points (-want +got):\n%s", diff)
	}
}

func TestReadCSVErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"header", "a,b\n1,2\n"},
		{"columns", "x,y\n1,2,3\n"},
		{"number", "x,y\n1,two\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := plot.ReadCSV(strings.NewReader(c.in))
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
}
