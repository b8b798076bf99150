package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"scalebar-service/internal/models"
)

// Column layout of an input sheet.
const (
	colName = iota
	colLat
	colLon
	colZoom
	colResolution
	colWidth
)

// TableZooms are the zoom levels ZoomTable generates.
const TableZooms = 21

// parseNumber accepts comma decimals ("41,01") and thousands separators ("1,500",
// "1,234.5"). A single comma followed by exactly three digits reads as a separator.
func parseNumber(val string) (float64, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	if strings.Count(val, ",") == 1 && !strings.Contains(val, ".") {
		if frac := val[strings.Index(val, ",")+1:]; len(frac) != 3 {
			val = strings.Replace(val, ",", ".", 1)
		}
	}
	return strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// ReadViewpoints reads the rows of sheetName: Name, Lat, Lon, Zoom and the optional
// Resolution (m/px) and Width (px). The header row is skipped, as are rows that
// neither locate a zoom level nor carry a resolution.
func ReadViewpoints(f *excelize.File, sheetName string) ([]models.Viewpoint, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	var viewpoints []models.Viewpoint
	for i, row := range rows {
		if i == 0 {
			continue // Skip header
		}

		v := models.Viewpoint{
			Name:     strings.TrimSpace(cell(row, colName)),
			Zoom:     -1,
			RowIndex: i + 1,
		}
		lat, err1 := parseNumber(cell(row, colLat))
		lon, err2 := parseNumber(cell(row, colLon))
		if err1 == nil && err2 == nil {
			v.Center = models.Coordinate{Lat: lat, Lon: lon}
		}
		if z, err := parseNumber(cell(row, colZoom)); err == nil && err1 == nil && err2 == nil {
			v.Zoom = int(z)
		}
		if res, err := parseNumber(cell(row, colResolution)); err == nil {
			v.Resolution = res
		}
		if w, err := parseNumber(cell(row, colWidth)); err == nil {
			v.Width = w
		}

		if v.Zoom < 0 && v.Resolution <= 0 {
			continue // Nothing to derive a scale from
		}
		viewpoints = append(viewpoints, v)
	}
	return viewpoints, nil
}

// ZoomTable builds one viewpoint per zoom level at a fixed centre.
func ZoomTable(lat, lon, width float64) []models.Viewpoint {
	viewpoints := make([]models.Viewpoint, 0, TableZooms)
	for z := 0; z < TableZooms; z++ {
		viewpoints = append(viewpoints, models.Viewpoint{
			Name:   fmt.Sprintf("zoom %d", z),
			Center: models.Coordinate{Lat: lat, Lon: lon},
			Zoom:   z,
			Width:  width,
		})
	}
	return viewpoints
}

// WriteTemplate saves an empty input workbook with the expected header and one
// example row.
func WriteTemplate(path, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	header := []interface{}{"Name", "Lat", "Lon", "Zoom", "Resolution (m/px)", "Width (px)"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	example := []interface{}{"example", 41.0082, 28.9784, 12, nil, 200}
	if err := f.SetSheetRow(sheetName, "A2", &example); err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func WriteResult(path string, data []models.ScaleRow, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"Name", "Lat", "Lon", "Zoom", "Resolution (m/px)", "Width (px)",
		"Distance", "Unit", "Distance (m)", "Label", "Render Width (px)", "Visible",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range data {
		cellName, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Name, r.Lat, r.Lon, r.Zoom, r.Resolution, r.Width,
			r.Distance, r.Unit, r.DistanceMeters, r.Label, r.RenderWidth, r.Visible,
		}
		if err := sw.SetRow(cellName, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	// Delete default sheet if exists
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
