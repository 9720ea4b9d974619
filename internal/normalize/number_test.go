package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmbiguousNumber_EuropeanFormat(t *testing.T) {
	assert.Equal(t, 6834.99, ParseAmbiguousNumber("6 834,99"))
	assert.Equal(t, 1234567.89, ParseAmbiguousNumber("1.234.567,89"))
}

func TestParseAmbiguousNumber_USFormat(t *testing.T) {
	assert.Equal(t, 2378.02, ParseAmbiguousNumber("2,378.02"))
	assert.Equal(t, 1234567.89, ParseAmbiguousNumber("1,234,567.89"))
}

func TestParseAmbiguousNumber_CurrencyTokens(t *testing.T) {
	assert.Equal(t, 99.95, ParseAmbiguousNumber("€ 99.95"))
	assert.Equal(t, 1500.0, ParseAmbiguousNumber("USD 1,500.00"))
	assert.Equal(t, 42.5, ParseAmbiguousNumber("$42.50"))
}

func TestParseAmbiguousNumber_SwissApostrophes(t *testing.T) {
	assert.Equal(t, 12345.67, ParseAmbiguousNumber("12'345.67"))
}

func TestParseAmbiguousNumber_Negative(t *testing.T) {
	assert.Equal(t, -25.5, ParseAmbiguousNumber("-25,50"))
}

func TestParseAmbiguousNumber_EmptyAndUnparseable(t *testing.T) {
	assert.Equal(t, 0.0, ParseAmbiguousNumber(""))
	assert.Equal(t, 0.0, ParseAmbiguousNumber("   "))
	assert.Equal(t, 0.0, ParseAmbiguousNumber("n/a"))
	assert.Equal(t, 0.0, ParseAmbiguousNumber("--"))
}

func TestParseAmbiguousNumber_PlainInteger(t *testing.T) {
	assert.Equal(t, 42.0, ParseAmbiguousNumber("42"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.0, Round2(10.004))
	assert.Equal(t, 33.33, Round2(100.0/3.0))
}
