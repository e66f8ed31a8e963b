package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonuclear/domain/coords"
	"gonuclear/domain/nuclear"
	"gonuclear/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// FigureKind selects one of the per-verdict diagnostic figures.
type FigureKind string

const (
	// FigureDetections is the detection scatter around the galaxy center.
	FigureDetections FigureKind = "detections"
	// FigureHistogram is the distribution of angular separations.
	FigureHistogram FigureKind = "histogram"
	// FigurePValue shows how the verdict depends on the assumed position
	// uncertainty.
	FigurePValue FigureKind = "pvalue"
)

var (
	colorDetections = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorGalaxy     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorMarker     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// WriteFigure renders the requested figure as a PNG. The detections are the
// same positions the verdict was computed from; callers re-fetch them from
// the catalog when rendering a stored verdict.
func WriteFigure(w io.Writer, kind FigureKind, v *models.Verdict, ras, decs []float64) error {
	var (
		p   *plot.Plot
		err error
	)
	switch kind {
	case FigureDetections:
		p, err = detectionsPlot(v, ras, decs)
	case FigureHistogram:
		p, err = histogramPlot(v, ras, decs)
	case FigurePValue:
		p, err = pValuePlot(v, ras, decs)
	default:
		return fmt.Errorf("unknown figure kind %q", kind)
	}
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render %s figure: %w", kind, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func detectionsPlot(v *models.Verdict, ras, decs []float64) (*plot.Plot, error) {
	dRA, dDec, err := coords.Offsets(ras, decs, v.GalaxyRA, v.GalaxyDec)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s detections", v.DisplayName())
	p.X.Label.Text = "ΔRA (arcsec)"
	p.Y.Label.Text = "ΔDec (arcsec)"

	pts := make(plotter.XYs, len(dRA))
	for i := range dRA {
		pts[i] = plotter.XY{X: dRA[i], Y: dDec[i]}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = colorDetections
	sc.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(sc)
	p.Legend.Add("detections", sc)

	center, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return nil, err
	}
	center.GlyphStyle.Color = colorGalaxy
	center.GlyphStyle.Radius = vg.Points(4)
	p.Add(center)
	p.Legend.Add("galaxy center", center)

	// 1-sigma and 3-sigma uncertainty circles around the center.
	for _, k := range []float64{1, 3} {
		ring, err := circleLine(k * v.GalaxySigma)
		if err != nil {
			return nil, err
		}
		ring.Color = colorGalaxy
		ring.Width = vg.Points(0.75)
		if k > 1 {
			ring.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(ring)
	}

	return p, nil
}

func histogramPlot(v *models.Verdict, ras, decs []float64) (*plot.Plot, error) {
	seps, err := coords.Separations(ras, decs, v.GalaxyRA, v.GalaxyDec)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s separation from galaxy center", v.DisplayName())
	p.X.Label.Text = "separation (arcsec)"
	p.Y.Label.Text = "detections"

	hist, err := plotter.NewHist(plotter.Values(seps), histBins(len(seps)))
	if err != nil {
		return nil, err
	}
	hist.FillColor = colorDetections
	p.Add(hist)

	top := 0.0
	for _, bin := range hist.Bins {
		if bin.Weight > top {
			top = bin.Weight
		}
	}

	mean, err := verticalLine(v.MeanSeparation, top)
	if err != nil {
		return nil, err
	}
	mean.Color = colorMarker
	mean.Width = vg.Points(1.5)
	p.Add(mean)
	p.Legend.Add("mean", mean)

	if v.SNR < v.SNRThreshold && v.UpperLimit > 0 {
		limit, err := verticalLine(v.UpperLimit, top)
		if err != nil {
			return nil, err
		}
		limit.Color = colorGalaxy
		limit.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(limit)
		p.Legend.Add(fmt.Sprintf("%.0f%% upper limit", v.Confidence*100), limit)
	}

	return p, nil
}

// pValuePlot sweeps the assumed position uncertainty from 0.1 to 5 times
// the adopted value and shows where the verdict would flip.
func pValuePlot(v *models.Verdict, ras, decs []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s verdict sensitivity", v.DisplayName())
	p.X.Label.Text = "assumed position uncertainty (arcsec)"
	p.Y.Label.Text = "p-value"
	p.Y.Min, p.Y.Max = 0, 1

	const samples = 100
	curve := make(plotter.XYs, 0, samples)
	for i := 0; i < samples; i++ {
		sigma := v.GalaxySigma * (0.1 + 4.9*float64(i)/float64(samples-1))
		res, err := nuclear.Test(ras, decs, v.GalaxyRA, v.GalaxyDec, sigma)
		if err != nil {
			return nil, err
		}
		curve = append(curve, plotter.XY{X: sigma, Y: res.PValue})
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, err
	}
	line.Color = colorDetections
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("p-value", line)

	threshold, err := plotter.NewLine(plotter.XYs{
		{X: curve[0].X, Y: nuclear.PValueThreshold},
		{X: curve[len(curve)-1].X, Y: nuclear.PValueThreshold},
	})
	if err != nil {
		return nil, err
	}
	threshold.Color = colorGalaxy
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(threshold)
	p.Legend.Add("p = 0.05", threshold)

	adopted, err := verticalLine(v.GalaxySigma, 1)
	if err != nil {
		return nil, err
	}
	adopted.Color = colorMarker
	adopted.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(adopted)
	p.Legend.Add("adopted σ", adopted)

	return p, nil
}

func circleLine(radius float64) (*plotter.Line, error) {
	const segments = 120
	pts := make(plotter.XYs, segments+1)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		pts[i] = plotter.XY{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return plotter.NewLine(pts)
}

func verticalLine(x, top float64) (*plotter.Line, error) {
	return plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
}

func histBins(n int) int {
	bins := int(math.Sqrt(float64(n)))
	if bins < 5 {
		bins = 5
	}
	if bins > 30 {
		bins = 30
	}
	return bins
}
