package report

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// matrixGrid adapts a classes × topics matrix to the plotter grid contract:
// grid columns are topics, grid rows are classes, with row 0 drawn at the
// bottom.
type matrixGrid struct {
	m *mat.Dense
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

func (g matrixGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	// flip so the first class appears at the top of the figure
	return g.m.At(rows-1-r, c)
}

// Heatmap renders a classes × topics classification matrix to a PNG file,
// labeling the vertical axis with class names and the horizontal axis with
// topic numbers.
func Heatmap(b *mat.Dense, classNames []string, path string) error {
	rows, cols := b.Dims()
	if len(classNames) != rows {
		return fmt.Errorf("heatmap: %d class names for %d rows", len(classNames), rows)
	}

	p := plot.New()
	p.Title.Text = "Classification matrix"
	p.X.Label.Text = "Topic"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(matrixGrid{m: b}, pal)
	p.Add(hm)

	xticks := make([]plot.Tick, cols)
	for j := 0; j < cols; j++ {
		xticks[j] = plot.Tick{Value: float64(j), Label: fmt.Sprintf("%d", j+1)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)

	yticks := make([]plot.Tick, rows)
	for i := 0; i < rows; i++ {
		// mirror the flip applied by the grid adapter
		yticks[i] = plot.Tick{Value: float64(i), Label: classNames[rows-1-i]}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("heatmap: failed to save %s: %w", path, err)
	}
	return nil
}
