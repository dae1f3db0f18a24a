package dashboard

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/wattwise/forecast"
	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

var (
	curveLine = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	curveFill = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0x55}
)

// RenderCurve draws the hourly kWh of curve as a filled area chart and
// returns it PNG encoded.
func RenderCurve(curve []forecast.HourPoint, title string) ([]byte, error) {
	if len(curve) == 0 {
		return nil, wwErrors.ErrEmptyData
	}

	pts := make(plotter.XYs, len(curve))
	for i, p := range curve {
		pts[i].X = float64(p.Hour)
		pts[i].Y = p.EnergyKWh
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, wwErrors.Wrap(err, "failed to build curve")
	}
	line.Color = curveLine
	line.Width = vg.Points(2)
	line.FillColor = curveFill

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Hour of day"
	p.Y.Label.Text = "Output (kWh)"
	p.Add(plotter.NewGrid(), line)
	p.X.Min, p.X.Max = 0, 23
	p.Y.Min = 0

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, wwErrors.Wrap(err, "failed to render chart")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, wwErrors.Wrap(err, "failed to encode chart")
	}
	return buf.Bytes(), nil
}
