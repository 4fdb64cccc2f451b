package tracking

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// CodePrefix is the fixed first segment of every tracking code.
	CodePrefix = "MC"
	// SuffixLength is the number of random characters after the year.
	SuffixLength = 6

	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var codePattern = regexp.MustCompile(`^MC-\d{4}-[A-Z0-9]{6}$`)

// ValidateCode reports whether code has the MC-YYYY-XXXXXX shape.
func ValidateCode(code string) bool {
	return codePattern.MatchString(code)
}

// ExtractYear returns the year segment of a valid code.
func ExtractYear(code string) (int, bool) {
	if !ValidateCode(code) {
		return 0, false
	}
	year, err := strconv.Atoi(code[3:7])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ExtractSuffix returns the six character identifier of a valid code.
func ExtractSuffix(code string) (string, bool) {
	if !ValidateCode(code) {
		return "", false
	}
	return code[8:], true
}

// FormatForDisplay spaces out the segments ("MC - 2026 - 4K9Z2A").
// Invalid codes are returned unchanged.
func FormatForDisplay(code string) string {
	if !ValidateCode(code) {
		return code
	}
	return strings.Join(strings.Split(code, "-"), " - ")
}

// IsCurrentYear reports whether code was issued in the same year as now.
func IsCurrentYear(code string, now time.Time) bool {
	year, ok := ExtractYear(code)
	return ok && year == now.Year()
}

// DisplayInfo is the breakdown of a code shown next to a lookup result.
type DisplayInfo struct {
	Formatted     string `json:"formatted"`
	Year          *int   `json:"year"`
	Suffix        string `json:"suffix,omitempty"`
	IsCurrentYear bool   `json:"isCurrentYear"`
}

// Describe builds the DisplayInfo for code.
func Describe(code string, now time.Time) DisplayInfo {
	info := DisplayInfo{Formatted: FormatForDisplay(code)}
	if year, ok := ExtractYear(code); ok {
		info.Year = &year
		info.IsCurrentYear = year == now.Year()
	}
	info.Suffix, _ = ExtractSuffix(code)
	return info
}

// CodeStatistics counts a batch of codes by validity and year.
type CodeStatistics struct {
	Total        int         `json:"total"`
	CurrentYear  int         `json:"currentYear"`
	ByYear       map[int]int `json:"byYear"`
	ValidCodes   int         `json:"validCodes"`
	InvalidCodes int         `json:"invalidCodes"`
}

// SummarizeCodes computes CodeStatistics for codes.
func SummarizeCodes(codes []string, now time.Time) CodeStatistics {
	stats := CodeStatistics{Total: len(codes), ByYear: make(map[int]int)}
	for _, code := range codes {
		year, ok := ExtractYear(code)
		if !ok {
			stats.InvalidCodes++
			continue
		}
		stats.ValidCodes++
		stats.ByYear[year]++
		if year == now.Year() {
			stats.CurrentYear++
		}
	}
	return stats
}

// GroupByYear buckets valid codes by their year segment. Invalid codes are dropped.
func GroupByYear(codes []string) map[int][]string {
	groups := make(map[int][]string)
	for _, code := range codes {
		if year, ok := ExtractYear(code); ok {
			groups[year] = append(groups[year], code)
		}
	}
	return groups
}

// SortCodes orders codes by year then suffix. Invalid codes sort as year 0.
func SortCodes(codes []string, ascending bool) []string {
	out := make([]string, len(codes))
	copy(out, codes)
	sort.SliceStable(out, func(i, j int) bool {
		yi, _ := ExtractYear(out[i])
		yj, _ := ExtractYear(out[j])
		if yi != yj {
			if ascending {
				return yi < yj
			}
			return yi > yj
		}
		si, _ := ExtractSuffix(out[i])
		sj, _ := ExtractSuffix(out[j])
		if ascending {
			return si < sj
		}
		return si > sj
	})
	return out
}

func formatCode(year int, suffix string) string {
	return fmt.Sprintf("%s-%04d-%s", CodePrefix, year, suffix)
}
