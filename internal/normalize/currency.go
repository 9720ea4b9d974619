package normalize

import "strings"

// currencySymbols maps common currency symbols to ISO 4217 codes.
var currencySymbols = map[string]string{
	"€": "EUR",
	"$": "USD",
	"£": "GBP",
}

// knownCurrencies is the fixed allow-list of accepted ISO 4217 codes.
var knownCurrencies = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "CHF": true, "SEK": true,
	"NOK": true, "DKK": true, "PLN": true, "CZK": true, "HUF": true,
	"RON": true, "BGN": true, "TRY": true, "CNY": true, "JPY": true,
	"KRW": true, "INR": true, "AUD": true, "CAD": true, "NZD": true,
	"SGD": true, "HKD": true, "TWD": true, "AED": true, "SAR": true,
	"ZAR": true, "BRL": true, "MXN": true, "THB": true, "VND": true,
}

// NormalizeCurrencyCode maps a currency symbol or 3-letter code onto the
// ISO 4217 allow-list. Anything unrecognized returns false; the function
// never guesses.
func NormalizeCurrencyCode(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if code, ok := currencySymbols[s]; ok {
		return code, true
	}
	upper := strings.ToUpper(s)
	if knownCurrencies[upper] {
		return upper, true
	}
	return "", false
}
