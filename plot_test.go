package chicplot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"
)

func TestPreciseTicks(t *testing.T) {
	ticks := PreciseTicks{NSuggestedTicks: 5}.Ticks(0, 1)

	var labels []string
	var minors []float64
	for _, tk := range ticks {
		if tk.Label != "" {
			labels = append(labels, tk.Label)
		} else {
			minors = append(minors, tk.Value)
		}
	}
	assert.Equal(t, []string{"0", "0.2", "0.4", "0.6", "0.8", "1"}, labels)
	assert.Equal(t, []float64{0.1, 0.3, 0.5, 0.7, 0.9}, minors)

	assert.Panics(t, func() { PreciseTicks{}.Ticks(1, 1) })
}

func TestPreciseTicksWideRange(t *testing.T) {
	for _, tk := range (PreciseTicks{}).Ticks(0, 50) {
		if tk.Label != "" {
			assert.Zero(t, int(tk.Value)%10, tk.Label)
		}
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.3, round(0.30000000000000004, 2))
	assert.Equal(t, 7.0, round(7, 3))
	assert.Equal(t, 0.0, round(-0.0001, 1))
}

func TestFloatArrayFlags(t *testing.T) {
	f := FloatArrayFlags{Array: []float64{0, 50}}
	assert.Equal(t, "floats", f.Type())

	require.NoError(t, f.Set("5"))
	require.NoError(t, f.Set("8, 12"))
	assert.Equal(t, []float64{5, 8, 12}, f.Array, "defaults replaced on first set")
	assert.Equal(t, "[5 8 12]", f.String())

	rs, err := f.Ranges()
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{5, 8}, {8, 12}}, rs)

	assert.Error(t, f.Set("x"))
	require.NoError(t, f.Set("1"))
	_, err = f.Ranges()
	assert.Error(t, err, "decreasing edges")
}

func TestLineColor(t *testing.T) {
	assert.NotEqual(t, LineColor(0), LineColor(1))
	assert.NotNil(t, LineColor(10))
}

func TestSave(t *testing.T) {
	h := hbook.NewH1D(10, 0, 10)
	for i := 0; i < 10; i++ {
		h.Fill(float64(i)+0.5, float64(i+1))
	}
	p := NewPlot("test", "x", "y")
	LogY(p)
	AddH1D(p, h, 0, "h", true)

	path := filepath.Join(t.TempDir(), "h.png")
	require.NoError(t, Save(p, path))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
