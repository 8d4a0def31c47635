package firms

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

// Column names as they appear in FIRMS CSV headers. VIIRS feeds carry
// bright_ti4; MODIS archives carry brightness.
const (
	colLatitude   = "latitude"
	colLongitude  = "longitude"
	colBrightTI4  = "bright_ti4"
	colBrightness = "brightness"
	colAcqDate    = "acq_date"
	colAcqTime    = "acq_time"
	colConfidence = "confidence"
	colFRP        = "frp"
	colSatellite  = "satellite"
	colScan       = "scan"
	colTrack      = "track"
	colDayNight   = "daynight"
)

// parsePayload decodes a FIRMS CSV body into hotspot records. Fewer than two
// lines means no detections. Rows failing structural validation are logged
// at warn and skipped; a bad row never aborts the batch.
func (c *Client) parsePayload(payload []byte) []domain.HotspotRecord {
	if len(bytes.Split(bytes.TrimSpace(payload), []byte("\n"))) < 2 {
		return nil
	}

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1 // column count varies by source satellite

	header, err := reader.Read()
	if err != nil {
		c.logger.Warn("firms payload missing header", "error", err)
		return nil
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var records []domain.HotspotRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.logger.Warn("skipping unreadable firms row", "error", err)
			c.metrics.FIRMSRowsSkipped.Inc()
			continue
		}
		rec, ok := parseRow(row, cols)
		if !ok {
			c.logger.Warn("skipping malformed firms row", "row", strings.Join(row, ","))
			c.metrics.FIRMSRowsSkipped.Inc()
			continue
		}
		records = append(records, rec)
	}
	return records
}

// parseRow validates one data row. Latitude, longitude, acquisition date and
// time are required; everything else is optional.
func parseRow(row []string, cols map[string]int) (domain.HotspotRecord, bool) {
	lat, ok := requiredFloat(row, cols, colLatitude)
	if !ok {
		return domain.HotspotRecord{}, false
	}
	lon, ok := requiredFloat(row, cols, colLongitude)
	if !ok {
		return domain.HotspotRecord{}, false
	}
	acqDate := field(row, cols, colAcqDate)
	if acqDate == "" {
		return domain.HotspotRecord{}, false
	}
	acqTime, err := strconv.Atoi(strings.TrimSpace(field(row, cols, colAcqTime)))
	if err != nil {
		return domain.HotspotRecord{}, false
	}

	brightness := optionalFloat(row, cols, colBrightTI4)
	if brightness == nil {
		brightness = optionalFloat(row, cols, colBrightness)
	}

	return domain.HotspotRecord{
		Latitude:         lat,
		Longitude:        lon,
		BrightnessKelvin: brightness,
		AcqDate:          acqDate,
		AcqTime:          acqTime,
		Confidence:       field(row, cols, colConfidence),
		FRP:              optionalFloat(row, cols, colFRP),
		Satellite:        field(row, cols, colSatellite),
		Scan:             optionalFloat(row, cols, colScan),
		Track:            optionalFloat(row, cols, colTrack),
		DayNight:         field(row, cols, colDayNight),
	}, true
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func requiredFloat(row []string, cols map[string]int, name string) (float64, bool) {
	s := field(row, cols, name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func optionalFloat(row []string, cols map[string]int, name string) *float64 {
	s := field(row, cols, name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
