package domain

// HotspotRecord is one FIRMS CSV data row after structural parsing.
// Immutable once parsed; it lives only for the duration of a request.
type HotspotRecord struct {
	Latitude         float64
	Longitude        float64
	BrightnessKelvin *float64
	AcqDate          string // YYYY-MM-DD
	AcqTime          int    // HHMM, may be under four digits in the feed
	Confidence       string // letter code ("l"/"n"/"h") or 0-100 integer
	FRP              *float64
	Satellite        string
	Scan             *float64
	Track            *float64
	DayNight         string
}

// NormalizedHotspot is the human-facing form of a detection. JSON field
// names follow the public API contract (Spanish, matching the mobile client).
type NormalizedHotspot struct {
	Latitude           float64  `json:"latitud"`
	Longitude          float64  `json:"longitud"`
	DetectedAt         string   `json:"fecha_hora"` // ISO-8601 UTC, empty when the source timestamp is malformed
	TemperatureCelsius *float64 `json:"temperatura_celsius"`
	TemperatureText    string   `json:"temperatura_texto"`
	Confidence         string   `json:"confianza"`
	ConfidenceText     string   `json:"confianza_texto"`
	FRP                *float64 `json:"frp"`
	IntensityText      string   `json:"intensidad_texto"`
	ProtectedArea      *string  `json:"area_protegida"`
}

// QuerySummary aggregates one hotspot query. Derived, never persisted.
type QuerySummary struct {
	TotalCount int    `json:"cantidad_focos"`
	Period     string `json:"periodo"`
	DataSource string `json:"fuente_datos"`
	Message    string `json:"mensaje"`
}

// FireQueryResult is the complete hotspot response envelope.
type FireQueryResult struct {
	Summary  QuerySummary        `json:"resumen"`
	Hotspots []NormalizedHotspot `json:"focos"`
}

// VegetationIndexSample is one regional NDVI mean for a single scene date.
type VegetationIndexSample struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	MeanNDVI float64 `json:"mean_ndvi"`
}

// BurnMetadata names the satellite source and the severity legend returned
// with every burn-severity analysis.
type BurnMetadata struct {
	Satellite     string            `json:"satellite"`
	Index         string            `json:"index"`
	SeverityScale map[string]string `json:"severity_scale"` // keyed "0".."4"
}

// BurnSeverityResult is the dNBR analysis bundle for one pre/post date pair.
type BurnSeverityResult struct {
	PreFireDate   string       `json:"pre_fire_date"`
	PostFireDate  string       `json:"post_fire_date"`
	PreFireNBR    float64      `json:"pre_fire_nbr"`
	PostFireNBR   float64      `json:"post_fire_nbr"`
	DeltaNBR      float64      `json:"dnbr"`
	SeverityClass int          `json:"severity"`
	SeverityLabel string       `json:"severity_label"`
	Geometry      Region       `json:"geometry"`
	Metadata      BurnMetadata `json:"metadata"`
}

// HistoricalFireDay is one daily thermal-anomaly pixel count.
type HistoricalFireDay struct {
	Date           string `json:"date"`
	FirePixelCount int    `json:"fire_pixel_count"`
}

// HistoricalFireSummary aggregates a historical fire-pixel query.
type HistoricalFireSummary struct {
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	TotalDaysAnalyzed int     `json:"total_days_analyzed"`
	DaysWithFires     int     `json:"days_with_fires"`
	TotalFirePixels   int     `json:"total_fire_pixels"`
	MaxPixelsInADay   int     `json:"max_pixels_in_a_day"`
	PeakFireDate      *string `json:"peak_fire_date"` // nil when no day had fire
}

// HistoricalFireReport is the complete historical fire response envelope.
type HistoricalFireReport struct {
	Summary   HistoricalFireSummary `json:"summary"`
	DailyData []HistoricalFireDay   `json:"daily_data"`
}
