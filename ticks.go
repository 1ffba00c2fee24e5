package chicplot

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks marks round major values with labels and unlabelled minor
// ticks in between. Labels are rounded to the precision of the major step so
// that values such as 0.30000000000000004 print as 0.3.
type PreciseTicks struct {
	NSuggestedTicks int
}

// Ticks implements plot.Ticker. It panics if max <= min.
func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	n := t.NSuggestedTicks
	if n == 0 {
		n = 4
	}
	if max <= min {
		panic("chicplot: illegal tick range")
	}

	mult, major := majorStep(min, max, n)
	prec := 1 - int(math.Floor(math.Log10(major)))

	var ticks []plot.Tick
	for i := math.Ceil(min / major); i*major <= max; i++ {
		r := round(i*major, prec)
		ticks = append(ticks, plot.Tick{Value: r, Label: strconv.FormatFloat(r, 'g', -1, 64)})
	}

	div := minorDivisions(mult)
	minor := major / div
	for i := math.Ceil(min / minor); i*minor <= max; i++ {
		if math.Mod(i, div) != 0 {
			ticks = append(ticks, plot.Tick{Value: round(i*minor, prec+1)})
		}
	}
	return ticks
}

// majorStep returns the spacing of labelled ticks as mult * 10^k, giving
// roughly n-1 intervals on [min, max].
func majorStep(min, max float64, n int) (int, float64) {
	span := max - min
	tens := math.Pow10(int(math.Floor(math.Log10(span))))
	for span/tens < float64(n-1) {
		tens /= 10
	}
	mult := int(span / tens / float64(n-1))
	switch mult {
	case 0:
		mult = 1
	case 7:
		mult = 6
	case 9:
		mult = 8
	}
	return mult, float64(mult) * tens
}

func minorDivisions(mult int) float64 {
	switch mult {
	case 3, 6:
		return 3
	case 5:
		return 5
	}
	return 2
}

// round rounds x to prec decimal places, keeping integers and never
// returning negative zero.
func round(x float64, prec int) float64 {
	if x == 0 || (prec >= 0 && x == math.Trunc(x)) {
		return x + 0
	}
	pow := math.Pow10(prec)
	v := x * pow
	if math.IsInf(v, 0) {
		return x
	}
	v = math.Round(v)
	if v == 0 {
		return 0
	}
	return v / pow
}
