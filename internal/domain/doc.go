// Package domain models NASA FIRMS hotspot detections and the derived
// vegetation/burn-index results for the Corrientes wildfire monitor.
//
// # Data Source
//
// Active-fire detections come from the NASA FIRMS area API as CSV, one row
// per detection, queried by {api key, satellite source, bounding box, day
// count}. Near-real-time queries use the VIIRS_SNPP_NRT source; fixed
// historical years (2021-2023) use the MODIS_SP archive. Vegetation and burn
// indices are computed server-side by a Google Earth Engine style raster
// backend and reduced to scalars before they reach this package.
//
// # FIRMS CSV Conventions
//
// Acquisition time:
//
//	HHMM in 24-hour UTC, e.g. 1510 = 15:10. Values under four digits are
//	zero-padded: 930 → "0930", 5 → "0005". Combined with acq_date to a full
//	ISO-8601 UTC timestamp; rows whose combination fails keep an empty
//	timestamp rather than being dropped.
//
// Brightness temperature:
//
//	Kelvin, in the bright_ti4 column for VIIRS and brightness for MODIS.
//	Converted to Celsius rounded to one decimal for the response; missing
//	values stay missing ("Sin dato" in the text mapping).
//
// Confidence:
//
//	VIIRS uses letter codes: l (low), n (nominal), h (high).
//	MODIS uses a 0-100 integer: ≥80 high, ≥30 nominal, else low.
//	Anything else maps to "Desconocida". The mapping never fails.
//
// Fire radiative power (frp):
//
//	Megawatts, used as the intensity proxy for the user-facing text bands
//	(>50 strong, >20 medium, >0 low, otherwise no fire).
//
// # Severity Classification (dNBR)
//
// Burn severity derives from the pre/post-fire NBR differential using fixed
// breakpoints, inclusive on the lower bound:
//
//	< 0.10        class 0  vegetation increase
//	[0.10, 0.27)  class 1  low
//	[0.27, 0.44)  class 2  moderate-low
//	[0.44, 0.66)  class 3  moderate-high
//	≥ 0.66        class 4  high
package domain
