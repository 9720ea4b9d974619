package normalize

import "strings"

// countryNames resolves free-text country names to ISO 3166-1 alpha-2
// codes. Names from several source languages are listed because invoice
// origin/destination fields commonly carry the issuer's locale.
var countryNames = map[string]string{
	// English
	"germany": "DE", "france": "FR", "italy": "IT", "spain": "ES",
	"netherlands": "NL", "the netherlands": "NL", "belgium": "BE",
	"austria": "AT", "switzerland": "CH", "poland": "PL",
	"czech republic": "CZ", "czechia": "CZ", "slovakia": "SK",
	"hungary": "HU", "romania": "RO", "bulgaria": "BG", "greece": "GR",
	"portugal": "PT", "denmark": "DK", "sweden": "SE", "norway": "NO",
	"finland": "FI", "ireland": "IE", "united kingdom": "GB",
	"great britain": "GB", "england": "GB", "luxembourg": "LU",
	"united states": "US", "united states of america": "US", "usa": "US",
	"canada": "CA", "mexico": "MX", "brazil": "BR", "china": "CN",
	"japan": "JP", "south korea": "KR", "korea": "KR", "india": "IN",
	"taiwan": "TW", "hong kong": "HK", "singapore": "SG", "vietnam": "VN",
	"thailand": "TH", "malaysia": "MY", "indonesia": "ID",
	"australia": "AU", "new zealand": "NZ", "turkey": "TR",
	"united arab emirates": "AE", "saudi arabia": "SA",
	"south africa": "ZA", "russia": "RU", "ukraine": "UA",

	// German
	"deutschland": "DE", "frankreich": "FR", "italien": "IT",
	"spanien": "ES", "niederlande": "NL", "belgien": "BE",
	"osterreich": "AT", "österreich": "AT", "schweiz": "CH",
	"polen": "PL", "tschechien": "CZ", "grossbritannien": "GB",
	"großbritannien": "GB", "vereinigtes konigreich": "GB",
	"vereinigte staaten": "US",

	// French
	"allemagne": "DE", "italie": "IT", "espagne": "ES",
	"pays-bas": "NL", "belgique": "BE", "autriche": "AT",
	"suisse": "CH", "pologne": "PL", "royaume-uni": "GB",
	"etats-unis": "US", "états-unis": "US", "chine": "CN", "japon": "JP",

	// Native / other
	"españa": "ES", "italia": "IT", "nederland": "NL", "polska": "PL",
	"ceska republika": "CZ", "česká republika": "CZ", "sverige": "SE",
	"norge": "NO", "suomi": "FI", "danmark": "DK", "turkiye": "TR",
	"türkiye": "TR", "中国": "CN", "日本": "JP",
}

// knownAlpha2 accepts already-normalized codes as-is.
var knownAlpha2 = map[string]bool{
	"DE": true, "FR": true, "IT": true, "ES": true, "NL": true,
	"BE": true, "AT": true, "CH": true, "PL": true, "CZ": true,
	"SK": true, "HU": true, "RO": true, "BG": true, "GR": true,
	"PT": true, "DK": true, "SE": true, "NO": true, "FI": true,
	"IE": true, "GB": true, "LU": true, "US": true, "CA": true,
	"MX": true, "BR": true, "CN": true, "JP": true, "KR": true,
	"IN": true, "TW": true, "HK": true, "SG": true, "VN": true,
	"TH": true, "MY": true, "ID": true, "AU": true, "NZ": true,
	"TR": true, "AE": true, "SA": true, "ZA": true, "RU": true,
	"UA": true,
}

// NormalizeCountry resolves a free-text country name to its ISO 3166-1
// alpha-2 code. Valid alpha-2 input passes through uppercased; unresolvable
// input returns false.
func NormalizeCountry(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if len(s) == 2 {
		upper := strings.ToUpper(s)
		if knownAlpha2[upper] {
			return upper, true
		}
	}
	if code, ok := countryNames[strings.ToLower(s)]; ok {
		return code, true
	}
	return "", false
}
