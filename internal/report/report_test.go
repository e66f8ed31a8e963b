package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gonuclear/internal/testkit"
	"gonuclear/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleVerdict() *models.Verdict {
	return &models.Verdict{
		ID:             "0198c1a2-0000-7000-8000-000000000001",
		IAUName:        "2018hyz",
		ZTFName:        "ZTF18acpdvos",
		GalaxyRA:       151.711964,
		GalaxyDec:      1.69279,
		GalaxySigma:    0.25,
		NDetections:    42,
		Chi2:           1.31,
		PValue:         0.519,
		IsNuclear:      true,
		MeanSeparation: 0.31,
		LowerErr:       0.12,
		UpperErr:       0.14,
		SNR:            1.24,
		UpperLimit:     0.61,
		Confidence:     0.95,
		SNRThreshold:   3.0,
		CreatedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown_NuclearVerdict(t *testing.T) {
	md := Markdown(sampleVerdict())

	assert.Contains(t, md, "# Nuclear classification: 2018hyz")
	assert.Contains(t, md, "ZTF18acpdvos")
	assert.Contains(t, md, "**Verdict: nuclear.**")
	assert.Contains(t, md, "| Detections | 42 |")
	// SNR below threshold reports the upper limit.
	assert.Contains(t, md, "upper limit")
	assert.Contains(t, md, "0.610 arcsec")
}

func TestMarkdown_OffNuclearVerdict(t *testing.T) {
	v := sampleVerdict()
	v.IsNuclear = false
	v.PValue = 0.0004
	v.SNR = 8.2
	v.MeanSeparation = 2.05

	md := Markdown(v)
	assert.Contains(t, md, "**Verdict: not nuclear.**")
	assert.Contains(t, md, "noise bias removed")
	assert.NotContains(t, md, "upper limit")
}

func TestHTML_RendersTable(t *testing.T) {
	out := string(HTML(sampleVerdict()))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "ZTF18acpdvos")
}

func TestWriteFigure_AllKindsProducePNG(t *testing.T) {
	v := sampleVerdict()
	gen := testkit.NewScatter(7)
	ras, decs := gen.Detections(40, v.GalaxyRA, v.GalaxyDec, 0.3)

	for _, kind := range []FigureKind{FigureDetections, FigureHistogram, FigurePValue} {
		var buf bytes.Buffer
		err := WriteFigure(&buf, kind, v, ras, decs)
		require.NoError(t, err, "figure %s", kind)
		require.True(t, buf.Len() > 0)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")),
			"figure %s is not a PNG", kind)
	}
}

func TestWriteFigure_UnknownKind(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFigure(&buf, FigureKind("sparkline"), sampleVerdict(), []float64{1}, []float64{1})
	assert.Error(t, err)
}

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	v1 := sampleVerdict()
	v2 := sampleVerdict()
	v2.ID = "0198c1a2-0000-7000-8000-000000000002"
	v2.IAUName = ""
	v2.ZTFName = "ZTF20abcdefg"
	v2.IsNuclear = false

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []*models.Verdict{v1, v2}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Verdicts")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, workbookHeaders, rows[0])
	assert.Equal(t, "2018hyz", rows[1][1])
	assert.Equal(t, "ZTF20abcdefg", rows[2][2])
	assert.Equal(t, "TRUE", strings.ToUpper(rows[1][9]))
}
