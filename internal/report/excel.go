package report

import (
	"io"

	"gonuclear/models"

	"github.com/xuri/excelize/v2"
)

var workbookHeaders = []string{
	"id", "iau_name", "ztf_name", "galaxy_ra_deg", "galaxy_dec_deg",
	"galaxy_sigma_arcsec", "n_detections", "chi2", "p_value", "is_nuclear",
	"mean_separation_arcsec", "lower_err_arcsec", "upper_err_arcsec",
	"snr", "upper_limit_arcsec", "confidence", "snr_threshold", "created_at",
}

// WriteWorkbook exports verdicts as an xlsx workbook, one row per verdict.
func WriteWorkbook(w io.Writer, verdicts []*models.Verdict) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Verdicts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, h := range workbookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, v := range verdicts {
		row := []interface{}{
			v.ID, v.IAUName, v.ZTFName, v.GalaxyRA, v.GalaxyDec,
			v.GalaxySigma, v.NDetections, v.Chi2, v.PValue, v.IsNuclear,
			v.MeanSeparation, v.LowerErr, v.UpperErr,
			v.SNR, v.UpperLimit, v.Confidence, v.SNRThreshold,
			v.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
