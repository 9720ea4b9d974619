package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToISODate_DottedEuropean(t *testing.T) {
	iso, ok := ToISODate("21.09.2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-09-21", iso)
}

func TestToISODate_SlashedDayFirst(t *testing.T) {
	iso, ok := ToISODate("30/05/2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-05-30", iso)
}

func TestToISODate_AlreadyISO(t *testing.T) {
	iso, ok := ToISODate("2025-09-21")
	assert.True(t, ok)
	assert.Equal(t, "2025-09-21", iso)
}

func TestToISODate_SlashedISO(t *testing.T) {
	iso, ok := ToISODate("2025/09/21")
	assert.True(t, ok)
	assert.Equal(t, "2025-09-21", iso)
}

func TestToISODate_DashedDayFirst(t *testing.T) {
	iso, ok := ToISODate("30-05-2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-05-30", iso)
}

func TestToISODate_PermissiveFallback(t *testing.T) {
	iso, ok := ToISODate("21 September 2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-09-21", iso)

	iso, ok = ToISODate("Sep 5, 2025")
	assert.True(t, ok)
	assert.Equal(t, "2025-09-05", iso)
}

func TestToISODate_Unparseable(t *testing.T) {
	_, ok := ToISODate("not a date")
	assert.False(t, ok)

	_, ok = ToISODate("")
	assert.False(t, ok)
}
