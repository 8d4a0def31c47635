package domain

import (
	"log/slog"
	"time"
)

// TimePeriod is the closed set of supported lookback windows.
type TimePeriod string

const (
	PeriodLast24h      TimePeriod = "24h"
	PeriodLast48h      TimePeriod = "48h"
	PeriodLastWeek     TimePeriod = "week"
	PeriodLastMonth    TimePeriod = "month"
	PeriodCurrentYear  TimePeriod = "current"
	PeriodPreviousYear TimePeriod = "previous"
	PeriodYear2023     TimePeriod = "2023"
	PeriodYear2022     TimePeriod = "2022"
	PeriodYear2021     TimePeriod = "2021"
)

// FIRMS source identifiers per satellite archive.
const (
	SourceRecent     = "VIIRS_SNPP_NRT"
	SourceHistorical = "MODIS_SP"
)

var knownPeriods = map[TimePeriod]bool{
	PeriodLast24h: true, PeriodLast48h: true, PeriodLastWeek: true,
	PeriodLastMonth: true, PeriodCurrentYear: true, PeriodPreviousYear: true,
	PeriodYear2023: true, PeriodYear2022: true, PeriodYear2021: true,
}

// ParseTimePeriod validates a raw period string.
func ParseTimePeriod(raw string) (TimePeriod, bool) {
	p := TimePeriod(raw)
	return p, knownPeriods[p]
}

// Historical reports whether the period routes to the MODIS archive source.
func (p TimePeriod) Historical() bool {
	switch p {
	case PeriodYear2021, PeriodYear2022, PeriodYear2023:
		return true
	}
	return false
}

// Source returns the FIRMS satellite source identifier for the period.
func (p TimePeriod) Source() string {
	if p.Historical() {
		return SourceHistorical
	}
	return SourceRecent
}

// SourceLabel is the human-facing name of a FIRMS source identifier.
func SourceLabel(source string) string {
	if source == SourceHistorical {
		return "Satélite MODIS"
	}
	return "Satélite VIIRS"
}

// Window is a resolved (start, end] query window.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the window length in whole days, never below 1.
func (w Window) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// ResolveWindow maps a period to concrete dates, re-evaluated against the
// clock on every call. Unknown periods fall back to the last 24 hours with a
// warning rather than failing.
func ResolveWindow(p TimePeriod, logger *slog.Logger) Window {
	now := clock.Now()
	year := now.Year()

	switch p {
	case PeriodLast24h:
		return Window{Start: now.AddDate(0, 0, -1), End: now}
	case PeriodLast48h:
		return Window{Start: now.AddDate(0, 0, -2), End: now}
	case PeriodLastWeek:
		return Window{Start: now.AddDate(0, 0, -7), End: now}
	case PeriodLastMonth:
		return Window{Start: now.AddDate(0, 0, -30), End: now}
	case PeriodCurrentYear:
		return Window{Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), End: now}
	case PeriodPreviousYear:
		return calendarYear(year - 1)
	case PeriodYear2023:
		return calendarYear(2023)
	case PeriodYear2022:
		return calendarYear(2022)
	case PeriodYear2021:
		return calendarYear(2021)
	}

	logger.Warn("unrecognized time period, falling back to last 24h", "period", string(p))
	return Window{Start: now.AddDate(0, 0, -1), End: now}
}

func calendarYear(year int) Window {
	return Window{
		Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}
