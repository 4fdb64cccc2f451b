package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"MC-2026-4K9Z2A", true},
		{"MC-0000-000000", true},
		{"MC-9999-ZZZZZZ", true},
		{"", false},
		{"mc-2026-4K9Z2A", false},
		{"MC-2026-4k9z2a", false},
		{"MC-26-4K9Z2A", false},
		{"MC-20260-4K9Z2A", false},
		{"MC-2026-4K9Z2", false},
		{"MC-2026-4K9Z2AB", false},
		{"XX-2026-4K9Z2A", false},
		{"MC 2026 4K9Z2A", false},
		{"MC-2026-4K9Z2A\n", false},
		{" MC-2026-4K9Z2A", false},
		{"MC-2026-4K9_2A", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCode(tt.code))
		})
	}
}

func TestExtractYearAndSuffix(t *testing.T) {
	tests := []struct {
		code       string
		wantYear   int
		wantSuffix string
		ok         bool
	}{
		{"MC-2026-4K9Z2A", 2026, "4K9Z2A", true},
		{"MC-0001-000001", 1, "000001", true},
		{"MC-1999-ABCDEF", 1999, "ABCDEF", true},
		{"MC-26-4K9Z2A", 0, "", false},
		{"garbage", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			year, ok := ExtractYear(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantYear, year)

			suffix, ok := ExtractSuffix(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantSuffix, suffix)
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "MC - 2026 - 4K9Z2A", FormatForDisplay("MC-2026-4K9Z2A"))
	assert.Equal(t, "MC - 2024 - 001234", FormatForDisplay("MC-2024-001234"))
	assert.Equal(t, "MC-bad", FormatForDisplay("MC-bad"))
	assert.Equal(t, "", FormatForDisplay(""))
}

func TestIsCurrentYear(t *testing.T) {
	newYearsEve := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	newYearsDay := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		code string
		now  time.Time
		want bool
	}{
		{"last second of issue year", "MC-2025-AAAAAA", newYearsEve, true},
		{"first second of next year", "MC-2025-AAAAAA", newYearsDay, false},
		{"code from next year", "MC-2026-AAAAAA", newYearsEve, false},
		{"issued on new year's day", "MC-2026-AAAAAA", newYearsDay, true},
		{"invalid code", "MC-2026-aaaaaa", newYearsDay, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCurrentYear(tt.code, tt.now))
		})
	}
}

func TestDescribe(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	info := Describe("MC-2026-4K9Z2A", now)
	assert.Equal(t, "MC - 2026 - 4K9Z2A", info.Formatted)
	require.NotNil(t, info.Year)
	assert.Equal(t, 2026, *info.Year)
	assert.Equal(t, "4K9Z2A", info.Suffix)
	assert.True(t, info.IsCurrentYear)

	info = Describe("MC-2024-001234", now)
	require.NotNil(t, info.Year)
	assert.Equal(t, 2024, *info.Year)
	assert.False(t, info.IsCurrentYear)

	info = Describe("not-a-code", now)
	assert.Equal(t, DisplayInfo{Formatted: "not-a-code"}, info)
}

func TestSummarizeCodes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stats := SummarizeCodes([]string{
		"MC-2026-AAAAAA",
		"MC-2026-BBBBBB",
		"MC-2025-CCCCCC",
		"MC-2025",
		"",
	}, now)
	assert.Equal(t, CodeStatistics{
		Total:        5,
		CurrentYear:  2,
		ByYear:       map[int]int{2025: 1, 2026: 2},
		ValidCodes:   3,
		InvalidCodes: 2,
	}, stats)

	empty := SummarizeCodes(nil, now)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.ByYear)
	assert.Empty(t, empty.ByYear)
}

func TestGroupByYear(t *testing.T) {
	groups := GroupByYear([]string{"MC-2025-BBBBBB", "bogus", "MC-2026-AAAAAA", "MC-2025-AAAAAA"})
	assert.Equal(t, map[int][]string{
		2025: {"MC-2025-BBBBBB", "MC-2025-AAAAAA"},
		2026: {"MC-2026-AAAAAA"},
	}, groups)
	assert.Empty(t, GroupByYear(nil))
}

func TestSortCodes(t *testing.T) {
	codes := []string{"MC-2026-B00000", "MC-2024-ZZZZZZ", "bogus", "MC-2026-A00000", "MC-2025-000000"}

	tests := []struct {
		name      string
		ascending bool
		want      []string
	}{
		{"ascending", true, []string{"bogus", "MC-2024-ZZZZZZ", "MC-2025-000000", "MC-2026-A00000", "MC-2026-B00000"}},
		{"descending", false, []string{"MC-2026-B00000", "MC-2026-A00000", "MC-2025-000000", "MC-2024-ZZZZZZ", "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortCodes(codes, tt.ascending))
		})
	}
	assert.Equal(t, "MC-2026-B00000", codes[0], "input is not reordered")
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "MC-2026-4K9Z2A", formatCode(2026, "4K9Z2A"))
	assert.Equal(t, "MC-0042-000000", formatCode(42, "000000"))
	assert.True(t, ValidateCode(formatCode(9999, "ZZZZZZ")))
}
