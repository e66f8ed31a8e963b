// Package report renders classification verdicts for humans: a markdown
// summary (optionally converted to HTML), publication-style figures, and
// an xlsx export for batches.
package report

import (
	"fmt"
	"strings"

	"gonuclear/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders a single-verdict report.
func Markdown(v *models.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Nuclear classification: %s\n\n", v.DisplayName())
	if v.IAUName != "" && v.ZTFName != "" {
		fmt.Fprintf(&b, "IAU name **%s**, ZTF cross-id **%s**.\n\n", v.IAUName, v.ZTFName)
	}

	if v.IsNuclear {
		fmt.Fprintf(&b, "**Verdict: nuclear.** The detection centroid is consistent "+
			"with the galaxy center (p = %.4f > %.2f).\n\n", v.PValue, 0.05)
	} else {
		fmt.Fprintf(&b, "**Verdict: not nuclear.** The detection centroid is offset "+
			"from the galaxy center (p = %.4f <= %.2f).\n\n", v.PValue, 0.05)
	}

	fmt.Fprintf(&b, "## Hypothesis test\n\n")
	fmt.Fprintf(&b, "| Quantity | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Detections | %d |\n", v.NDetections)
	fmt.Fprintf(&b, "| Galaxy center | (%.6f, %.6f) deg |\n", v.GalaxyRA, v.GalaxyDec)
	fmt.Fprintf(&b, "| Position uncertainty | %.3f arcsec |\n", v.GalaxySigma)
	fmt.Fprintf(&b, "| Chi-square (2 dof) | %.4g |\n", v.Chi2)
	fmt.Fprintf(&b, "| p-value | %.4g |\n\n", v.PValue)

	fmt.Fprintf(&b, "## Separation\n\n")
	if v.SNR < v.SNRThreshold {
		fmt.Fprintf(&b, "The offset is not significantly detected "+
			"(S/N = %.2f < %.1f); the %.0f%% upper limit is "+
			"**%.3f arcsec**.\n\n", v.SNR, v.SNRThreshold, v.Confidence*100, v.UpperLimit)
		fmt.Fprintf(&b, "Sample mean separation: %.3f +/- %.3f arcsec.\n",
			v.MeanSeparation, v.UpperErr)
	} else {
		fmt.Fprintf(&b, "Offset from the galaxy center: **%.3f (+%.3f / -%.3f) arcsec** "+
			"(S/N = %.2f, noise bias removed).\n", v.MeanSeparation, v.UpperErr,
			v.LowerErr, v.SNR)
	}

	fmt.Fprintf(&b, "\n---\n\nGenerated %s.\n", v.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

// HTML renders the markdown report as a standalone HTML fragment.
func HTML(v *models.Verdict) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(v)), p, renderer)
}
