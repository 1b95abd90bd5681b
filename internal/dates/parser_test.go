package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/types"
)

var testNow = types.YearMonth{Year: 2025, Month: 6}

func idx(year, month int) int { return year*12 + month - 1 }

func TestYearRanges(t *testing.T) {
	p := NewParser(testNow)

	tests := []struct {
		name  string
		text  string
		start int
		end   int
	}{
		{"plain dash", "2015-2018", idx(2015, 1), idx(2018, 1)},
		{"en dash", "2015–2018", idx(2015, 1), idx(2018, 1)},
		{"spaced hyphen", "2019 - 2022", idx(2019, 1), idx(2022, 1)},
		{"to separator", "2019 to 2022", idx(2019, 1), idx(2022, 1)},
		{"present token", "2019 - present", idx(2019, 1), testNow.Index()},
		{"french present", "2019 – aujourd'hui", idx(2019, 1), testNow.Index()},
		{"two digit end", "1997 - 99", idx(1997, 1), idx(1999, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ivs := p.Extract(tt.text)
			require.Len(t, ivs, 1)
			assert.Equal(t, tt.start, ivs[0].Start)
			assert.Equal(t, tt.end, ivs[0].End)
		})
	}
}

func TestTwoDigitYearWindowing(t *testing.T) {
	p := NewParser(types.YearMonth{Year: 2025, Month: 6})

	year, ok := p.mapYear("99")
	require.True(t, ok)
	assert.Equal(t, 1999, year)

	year, ok = p.mapYear("25")
	require.True(t, ok)
	assert.Equal(t, 2025, year)

	year, ok = p.mapYear("26")
	require.True(t, ok)
	assert.Equal(t, 2026, year)
}

func TestYearBounds(t *testing.T) {
	p := NewParser(testNow)

	_, ok := p.mapYear("1949")
	assert.False(t, ok)

	_, ok = p.mapYear("2027")
	assert.False(t, ok)

	_, ok = p.mapYear("1950")
	assert.True(t, ok)

	_, ok = p.mapYear("2026")
	assert.True(t, ok)
}

func TestMonthNameRanges(t *testing.T) {
	p := NewParser(testNow)

	tests := []struct {
		name  string
		text  string
		start int
		end   int
	}{
		{"english full", "January 2020 - March 2022", idx(2020, 1), idx(2022, 3) + 1},
		{"english short dotted", "Jan. 2020 – Mar. 2022", idx(2020, 1), idx(2022, 3) + 1},
		{"french accented", "Février 2021 – Décembre 2022", idx(2021, 2), idx(2022, 12) + 1},
		{"french range with a", "Mars 2024 a Juin 2024", idx(2024, 3), idx(2024, 6) + 1},
		{"french accented a", "de Mars 2024 à Juin 2024", idx(2024, 3), idx(2024, 6) + 1},
		{"present end", "Sept 2023 - present", idx(2023, 9), testNow.Index()},
		{"year only end", "Jun 2019 - 2021", idx(2019, 6), idx(2021, 1)},
		{"august french", "Août 2019 – Août 2020", idx(2019, 8), idx(2020, 8) + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ivs := Merge(p.Extract(tt.text))
			require.NotEmpty(t, ivs)
			assert.Equal(t, tt.start, ivs[0].Start)
			assert.Equal(t, tt.end, ivs[0].End)
		})
	}
}

func TestDayMonthYearRange(t *testing.T) {
	p := NewParser(testNow)
	ivs := p.Extract("15 March 2020 - 30 June 2021")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2020, 3), ivs[0].Start)
	assert.Equal(t, idx(2021, 6)+1, ivs[0].End)
}

func TestNumericRanges(t *testing.T) {
	p := NewParser(testNow)

	ivs := p.Extract("03/2019 - 07/2021")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2019, 3), ivs[0].Start)
	assert.Equal(t, idx(2021, 7)+1, ivs[0].End)

	ivs = p.Extract("06/2022 - present")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2022, 6), ivs[0].Start)
	assert.Equal(t, testNow.Index(), ivs[0].End)
}

func TestDottedRangesPreferDayMonth(t *testing.T) {
	p := NewParser(testNow)

	// both components <= 12: second one is the month (French convention)
	ivs := p.Extract("01.03.2019 - 05.07.2021")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2019, 3), ivs[0].Start)
	assert.Equal(t, idx(2021, 7)+1, ivs[0].End)

	// second component cannot be a month: fall back to the first
	ivs = p.Extract("03.15.2019 - 07.20.2021")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2019, 3), ivs[0].Start)
}

func TestSingleMonthYearNeedsInternshipContext(t *testing.T) {
	p := NewParser(testNow)

	assert.Empty(t, p.Extract("Attended a conference in March 2023"))

	ivs := p.Extract("Stage PFE\nMars 2024")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2024, 3), ivs[0].Start)
	assert.Equal(t, idx(2024, 3)+1, ivs[0].End)
}

func TestOpenEnded(t *testing.T) {
	p := NewParser(testNow)

	ivs := p.Extract("Depuis janvier 2022")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2022, 1), ivs[0].Start)
	assert.Equal(t, testNow.Index(), ivs[0].End)

	ivs = p.Extract("since 2020, leading the platform team")
	require.NotEmpty(t, ivs)
	assert.Equal(t, idx(2020, 1), ivs[0].Start)
}

func TestMerge(t *testing.T) {
	merged := Merge([]types.MonthInterval{
		{Start: 10, End: 20},
		{Start: 18, End: 25},
		{Start: 25, End: 30}, // touching, coalesces
		{Start: 40, End: 45},
		{Start: 5, End: 3},     // inverted, dropped
		{Start: 0, End: 2000},  // runaway, dropped
	})
	require.Len(t, merged, 2)
	assert.Equal(t, types.MonthInterval{Start: 10, End: 30}, merged[0])
	assert.Equal(t, types.MonthInterval{Start: 40, End: 45}, merged[1])
	assert.Equal(t, 25, TotalMonths(merged))
}

func TestMergeIsMonotone(t *testing.T) {
	p := NewParser(testNow)
	merged := Merge(p.Extract("2015-2016, 2018-2019, 2020-2021, 2023-present"))
	for i := 1; i < len(merged); i++ {
		assert.Greater(t, merged[i].Start, merged[i-1].End-1,
			"merged intervals must be non-overlapping and ordered")
	}
	assert.Equal(t, 65, TotalMonths(merged))
}

func TestMonthsToYears(t *testing.T) {
	assert.Equal(t, 6.4, MonthsToYears(77))
	assert.Equal(t, 0.0, MonthsToYears(0))
	assert.Equal(t, 50.0, MonthsToYears(1200))
	assert.Equal(t, 1.0, MonthsToYears(12))
}

func TestYearsAnchor(t *testing.T) {
	years, ok := YearsAnchor("over 8 years of experience in backend work")
	require.True(t, ok)
	assert.Equal(t, 8.0, years)

	years, ok = YearsAnchor("5 ans d'experience en developpement")
	require.True(t, ok)
	assert.Equal(t, 5.0, years)

	_, ok = YearsAnchor("no anchor in this text")
	assert.False(t, ok)
}

func TestStripDates(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Senior Architect 2018-2022", "Senior Architect"},
		{"Sr Software Engineer. 2019 - present at Acme. Led a team of 8.", "Sr Software Engineer. at Acme. Led a team of 8."},
		{"Backend Developer — Mars 2021 – Juin 2023", "Backend Developer"},
		{"2015-2016, 2018-2019", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, StripDates(tt.input), "input %q", tt.input)
	}
}
