package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// KelvinToCelsius converts brightness temperature to Celsius rounded to one
// decimal. nil in, nil out.
func KelvinToCelsius(kelvin *float64) *float64 {
	if kelvin == nil {
		return nil
	}
	c := math.Round((*kelvin-273.15)*10) / 10
	return &c
}

// confidenceBand is one row of the numeric confidence ladder.
type confidenceBand struct {
	min   float64
	label string
}

var confidenceBands = []confidenceBand{
	{80, "Alta"},
	{30, "Nominal"},
}

// MapConfidence classifies a raw FIRMS confidence value. Letter codes are
// the VIIRS convention, numeric values the MODIS percentage. Never fails:
// unrecognized input maps to "Desconocida".
func MapConfidence(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "l":
		return "Baja"
	case "n":
		return "Nominal"
	case "h":
		return "Alta"
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "Desconocida"
	}
	for _, band := range confidenceBands {
		if v >= band.min {
			return band.label
		}
	}
	return "Baja"
}

// CombineDatetime builds an ISO-8601 UTC timestamp from a FIRMS acq_date and
// HHMM acq_time, zero-padding the time to four digits. Returns nil on any
// parse failure so callers can blank the field instead of failing the row.
func CombineDatetime(acqDate string, acqTime int) *string {
	if acqTime < 0 || acqTime > 2359 {
		return nil
	}
	padded := fmt.Sprintf("%04d", acqTime)
	combined := fmt.Sprintf("%sT%s:%s:00Z", acqDate, padded[:2], padded[2:])
	if _, err := time.Parse("2006-01-02T15:04:05Z", combined); err != nil {
		return nil
	}
	return &combined
}

// protectedArea is a named rectangular bound. This is a placeholder
// point-in-box check, not polygon containment; see DESIGN.md before
// extending it.
type protectedArea struct {
	name           string
	minLat, maxLat float64
	minLon, maxLon float64
}

var protectedAreas = []protectedArea{
	{"Parque Nacional Iberá", -28.7, -28.0, -57.8, -57.0},
}

// ProtectedAreaFor returns the protected area containing the point, or nil.
func ProtectedAreaFor(lat, lon float64) *string {
	for _, a := range protectedAreas {
		if lat >= a.minLat && lat <= a.maxLat && lon >= a.minLon && lon <= a.maxLon {
			return &a.name
		}
	}
	return nil
}

// textBand is one row of an ordered threshold ladder: the first band whose
// exclusive lower bound the value exceeds wins.
type textBand struct {
	above float64
	label string
}

var temperatureBands = []textBand{
	{80, "Muy caliente"},
	{60, "Caliente"},
	{40, "Tibio"},
}

// TemperatureText maps a Celsius temperature to its user-facing phrase.
func TemperatureText(celsius *float64) string {
	if celsius == nil {
		return "Sin dato"
	}
	for _, band := range temperatureBands {
		if *celsius > band.above {
			return band.label
		}
	}
	return "Bajo"
}

var intensityBands = []textBand{
	{50, "Fuego fuerte, visible desde lejos"},
	{20, "Fuego de intensidad media"},
	{0, "Fuego de baja intensidad"},
}

// IntensityText maps fire radiative power (MW) to its user-facing phrase.
func IntensityText(frp *float64) string {
	if frp == nil {
		return "Sin dato"
	}
	for _, band := range intensityBands {
		if *frp > band.above {
			return band.label
		}
	}
	return "Sin fuego"
}

var confidenceTexts = map[string]string{
	"Alta":    "El satélite está seguro de este foco",
	"Nominal": "El satélite tiene dudas, pero es posible que haya fuego",
	"Baja":    "El satélite detectó algo, pero puede ser falso",
}

// ConfidenceText explains a mapped confidence label.
func ConfidenceText(confidence string) string {
	if text, ok := confidenceTexts[confidence]; ok {
		return text
	}
	return "Sin información"
}

// Normalize converts a parsed FIRMS record into its human-facing form.
func Normalize(rec HotspotRecord) NormalizedHotspot {
	celsius := KelvinToCelsius(rec.BrightnessKelvin)
	confidence := MapConfidence(rec.Confidence)

	detectedAt := ""
	if ts := CombineDatetime(rec.AcqDate, rec.AcqTime); ts != nil {
		detectedAt = *ts
	}

	return NormalizedHotspot{
		Latitude:           rec.Latitude,
		Longitude:          rec.Longitude,
		DetectedAt:         detectedAt,
		TemperatureCelsius: celsius,
		TemperatureText:    TemperatureText(celsius),
		Confidence:         confidence,
		ConfidenceText:     ConfidenceText(confidence),
		FRP:                rec.FRP,
		IntensityText:      IntensityText(rec.FRP),
		ProtectedArea:      ProtectedAreaFor(rec.Latitude, rec.Longitude),
	}
}

// SummaryMessage builds the situation message shown alongside a query result.
func SummaryMessage(count int, period TimePeriod) string {
	switch {
	case count == 0:
		return fmt.Sprintf("No se detectaron focos de calor en el período seleccionado (%s).", period)
	case count == 1:
		return "Se detectó 1 foco de calor. Si está cerca, mantenga distancia y avise a un guardaparque."
	default:
		return fmt.Sprintf("Se detectaron %d focos de calor. Si está cerca de estos puntos, mantenga distancia y avise a un guardaparque.", count)
	}
}
