// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var seriesColors = []color.Color{
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, A: 255},
	color.Black,
}

// WriteSVG renders s as a line chart.
func (s Sweep) WriteSVG(w io.Writer) error {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.Label
	p.Y.Label.Text = s.YLabel
	p.Legend.Top = true

	for i, ser := range s.Series {
		xys := make(plotter.XYs, len(s.X))
		for j, x := range s.X {
			xys[j].X = x
			xys[j].Y = ser.Y[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", ser.Name, err)
		}
		line.Color = seriesColors[i%len(seriesColors)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		if len(s.Series) > 1 {
			p.Legend.Add(ser.Name, line)
		}
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return fmt.Errorf("rendering plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
