package flights

import "strings"

// DefaultAirport is used when a city cannot be resolved.
const DefaultAirport = "HKG"

var airports = map[string]string{
	"东京":        "HND",
	"tokyo":     "NRT",
	"香港":        "HKG",
	"hong kong": "HKG",
	"大阪":        "KIX",
	"osaka":     "KIX",
	"首尔":        "ICN",
	"seoul":     "ICN",
	"新加坡":       "SIN",
	"singapore": "SIN",
	"曼谷":        "BKK",
	"bangkok":   "BKK",
	"台北":        "TPE",
	"taipei":    "TPE",
	"北京":        "PEK",
	"beijing":   "PEK",
	"上海":        "PVG",
	"shanghai":  "PVG",
}

// AirportCode resolves a city name or IATA code. Known names match
// case-insensitively, three ASCII letters pass through upper-cased and
// anything else falls back to DefaultAirport.
func AirportCode(city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if code, ok := airports[key]; ok {
		return code
	}
	if isIATA(key) {
		return strings.ToUpper(key)
	}
	return DefaultAirport
}

func isIATA(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
