// Command genfixture generates a synthetic FIRMS CSV fixture plus its
// normalized JSON counterpart for the test suites. It runs the actual domain
// normalization so fixtures always match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -count 50 \
//	  -csv-out testdata/firms_viirs.csv \
//	  -json-out testdata/firms_viirs_normalized.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

// Fixtures spread detections over the Corrientes bounding box.
const (
	minLat, maxLat = -31.0, -26.0
	minLon, maxLon = -60.0, -57.0
)

var confidenceCodes = []string{"l", "n", "h", "85", "45", "12"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 50, "number of detections to generate")
	seed := flag.Int64("seed", 42, "PRNG seed, fixed for reproducible fixtures")
	csvOut := flag.String("csv-out", "", "output path for the raw CSV fixture")
	jsonOut := flag.String("json-out", "", "output path for the normalized JSON fixture")
	flag.Parse()

	if *csvOut == "" || *jsonOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-out, -json-out")
	}

	// Fixed clock so any clock-derived output stays reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 5, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(clockwork.NewRealClock())

	rng := rand.New(rand.NewSource(*seed))

	records := make([]domain.HotspotRecord, 0, *count)
	for i := 0; i < *count; i++ {
		records = append(records, randomRecord(rng, i))
	}

	if err := writeCSV(*csvOut, records); err != nil {
		return fmt.Errorf("writing CSV fixture: %w", err)
	}
	log.Printf("wrote CSV fixture: %s", *csvOut)

	normalized := make([]domain.NormalizedHotspot, 0, len(records))
	for _, rec := range records {
		normalized = append(normalized, domain.Normalize(rec))
	}
	if err := writeJSON(*jsonOut, normalized); err != nil {
		return fmt.Errorf("writing JSON fixture: %w", err)
	}
	log.Printf("wrote JSON fixture: %s", *jsonOut)

	printStats(normalized)
	return nil
}

func randomRecord(rng *rand.Rand, i int) domain.HotspotRecord {
	brightness := 300 + rng.Float64()*100 // Kelvin
	frp := rng.Float64() * 80
	day := 1 + rng.Intn(28)

	rec := domain.HotspotRecord{
		Latitude:   minLat + rng.Float64()*(maxLat-minLat),
		Longitude:  minLon + rng.Float64()*(maxLon-minLon),
		AcqDate:    fmt.Sprintf("2024-06-%02d", day),
		AcqTime:    rng.Intn(24)*100 + rng.Intn(60),
		Confidence: confidenceCodes[rng.Intn(len(confidenceCodes))],
		Satellite:  "N",
		DayNight:   "D",
	}
	// Leave occasional gaps like the real feed does.
	if i%7 != 0 {
		rec.BrightnessKelvin = &brightness
	}
	if i%5 != 0 {
		rec.FRP = &frp
	}
	return rec
}

func writeCSV(path string, records []domain.HotspotRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("latitude,longitude,bright_ti4,acq_date,acq_time,confidence,frp,satellite,daynight\n")
	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%.5f,%.5f,%s,%s,%04d,%s,%s,%s,%s\n",
			rec.Latitude, rec.Longitude,
			formatOptional(rec.BrightnessKelvin),
			rec.AcqDate, rec.AcqTime, rec.Confidence,
			formatOptional(rec.FRP),
			rec.Satellite, rec.DayNight))
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(normalized []domain.NormalizedHotspot) {
	confidence := map[string]int{}
	intensity := map[string]int{}
	var protected int
	for i := range normalized {
		h := &normalized[i]
		confidence[h.ConfidenceText]++
		intensity[h.IntensityText]++
		if h.ProtectedArea != nil {
			protected++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(normalized))
	fmt.Printf("By confidence: Alta=%d, Nominal=%d, Baja=%d, Desconocida=%d\n",
		confidence["Alta"], confidence["Nominal"], confidence["Baja"], confidence["Desconocida"])
	fmt.Printf("In protected areas: %d\n", protected)
	fmt.Println("By intensity:")
	for label, n := range intensity {
		fmt.Printf("  %s: %d\n", label, n)
	}
}
