package store

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/pkg/config"
	"github.com/quarrydb/quarry/pkg/dict"
	"github.com/quarrydb/quarry/pkg/sniff"
)

var allLayouts = []string{config.LayoutLinked, config.LayoutColumnar, config.LayoutCompact}

func indicatorFixture(t *testing.T, layoutName string, workers int) *Store {
	t.Helper()

	b, err := NewBuilder(sniff.KindIndicator, layoutName)
	require.NoError(t, err)

	d := b.Dicts()
	b.AppendIndicator(IndicatorRecord{
		CountryNameID: d.Intern(dict.CountryName, "A"),
		CountryCodeID: d.Intern(dict.CountryCode, "AA"),
		IndicatorID:   d.Intern(dict.Indicator, "Population, total|SP.POP.TOTL"),
		Year:          2000,
		Value:         10,
	})
	b.AppendIndicator(IndicatorRecord{
		CountryNameID: d.Intern(dict.CountryName, "B"),
		CountryCodeID: d.Intern(dict.CountryCode, "BB"),
		IndicatorID:   d.Intern(dict.Indicator, "Population, total|SP.POP.TOTL"),
		Year:          2001,
		Value:         20,
	})

	s, err := Freeze(Options{Workers: workers}, b)
	require.NoError(t, err)
	return s
}

func sensorBuilder(t *testing.T, layoutName string, n int) *Builder {
	t.Helper()

	b, err := NewBuilder(sniff.KindSensor, layoutName)
	require.NoError(t, err)
	d := b.Dicts()
	for i := 0; i < n; i++ {
		value := float32(i % 250)
		if i%11 == 0 {
			value = float32(math.NaN()) // missing reading
		}
		b.AppendSensor(SensorRecord{
			Latitude:    float32(30 + i%20),
			Longitude:   float32(-120 + i%40),
			UTCMinutes:  int32(26600000 + i),
			ParameterID: uint16(d.Intern(dict.Parameter, fmt.Sprintf("P%d", i%3))),
			UnitID:      uint16(d.Intern(dict.Unit, "UG/M3")),
			Value:       value,
			RawValue:    value,
			AQI:         int16(i % 300),
			Category:    uint8(i % 5),
			SiteID:      d.Intern(dict.Site, fmt.Sprintf("site-%d", i%7)),
			AgencyID:    d.Intern(dict.Agency, "CARB"),
			AqsID:       d.Intern(dict.AQS, fmt.Sprintf("%09d", i%13)),
			Year:        int16(2019 + i%3),
		})
	}
	return b
}

// viewKeys turns views into order-independent comparable keys. NaN formats
// stably, so missing readings compare fine.
func viewKeys(views []RowView) map[string]int {
	keys := make(map[string]int, len(views))
	for _, v := range views {
		keys[fmt.Sprintf("%+v", v)]++
	}
	return keys
}

func TestAggregateScenario(t *testing.T) {
	for _, layoutName := range allLayouts {
		t.Run(layoutName, func(t *testing.T) {
			s := indicatorFixture(t, layoutName, 1)

			assert.Equal(t, 10.0, s.SumByYear(2000))
			assert.Equal(t, 0.0, s.SumByYear(1999))

			maxRow, ok := s.FindMax()
			require.True(t, ok)
			assert.Equal(t, 20.0, maxRow.Metric)

			minRow, ok := s.FindMin()
			require.True(t, ok)
			assert.Equal(t, 10.0, minRow.Metric)
			assert.Equal(t, "A", minRow.CountryName(s.Dicts()))
			assert.Equal(t, "AA", minRow.CountryCode(s.Dicts()))
		})
	}
}

func TestEmptyStore(t *testing.T) {
	for _, layoutName := range allLayouts {
		t.Run(layoutName, func(t *testing.T) {
			b, err := NewBuilder(sniff.KindSensor, layoutName)
			require.NoError(t, err)
			s, err := Freeze(Options{Workers: 4}, b)
			require.NoError(t, err)

			_, ok := s.FindMin()
			assert.False(t, ok)
			_, ok = s.FindMax()
			assert.False(t, ok)
			assert.Equal(t, 0.0, s.SumByYear(2020))

			rows, err := s.RangeScan(ColValue, "0", "100")
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestRangeScanFailsClosed(t *testing.T) {
	s := indicatorFixture(t, config.LayoutColumnar, 1)

	t.Run("inverted bounds", func(t *testing.T) {
		rows, err := s.RangeScan(ColPopulation, "100", "0")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unparseable low bound", func(t *testing.T) {
		rows, err := s.RangeScan(ColPopulation, "abc", "100")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unparseable high bound", func(t *testing.T) {
		rows, err := s.RangeScan(ColYear, "1990", "203x")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("float text on integer column", func(t *testing.T) {
		rows, err := s.RangeScan(ColYear, "1999.5", "2002")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestRangeScanUnsupportedColumn(t *testing.T) {
	s := indicatorFixture(t, config.LayoutCompact, 1)

	rows, err := s.RangeScan(ColLatitude, "0", "90")
	assert.ErrorIs(t, err, ErrUnsupportedColumn)
	assert.Nil(t, rows)

	// Distinct from a match-free scan, which succeeds.
	rows, err = s.RangeScan(ColPopulation, "1000", "2000")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRangeScanInclusiveBounds(t *testing.T) {
	for _, layoutName := range allLayouts {
		t.Run(layoutName, func(t *testing.T) {
			s := indicatorFixture(t, layoutName, 1)

			rows, err := s.RangeScan(ColPopulation, "10", "20")
			require.NoError(t, err)
			require.Len(t, rows, 2)
			// Sequential scans preserve storage order.
			assert.Equal(t, 10.0, rows[0].Population)
			assert.Equal(t, 20.0, rows[1].Population)

			rows, err = s.RangeScan(ColYear, "2001", "2001")
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, 2001, rows[0].Year)
		})
	}
}

func TestMetricDerivation(t *testing.T) {
	t.Run("indicator metric mirrors value", func(t *testing.T) {
		s := indicatorFixture(t, config.LayoutColumnar, 1)
		for i := 0; i < s.Len(); i++ {
			v := s.View(i)
			assert.Equal(t, v.Population, v.Metric)
		}
	})

	t.Run("sensor NaN value yields zero metric", func(t *testing.T) {
		b, err := NewBuilder(sniff.KindSensor, config.LayoutCompact)
		require.NoError(t, err)
		b.AppendSensor(SensorRecord{Value: float32(math.NaN()), Year: 2020})
		b.AppendSensor(SensorRecord{Value: 42, Year: 2020})
		s, err := Freeze(Options{}, b)
		require.NoError(t, err)

		assert.Equal(t, 0.0, s.View(0).Metric)
		assert.Equal(t, 42.0, s.View(1).Metric)
		assert.Equal(t, 42.0, s.SumByYear(2020))
	})
}

func TestRangeScanExcludesMissingReadings(t *testing.T) {
	for _, layoutName := range allLayouts {
		t.Run(layoutName, func(t *testing.T) {
			b, err := NewBuilder(sniff.KindSensor, layoutName)
			require.NoError(t, err)
			b.AppendSensor(SensorRecord{Value: float32(math.NaN()), RawValue: float32(math.NaN()), Year: 2020})
			b.AppendSensor(SensorRecord{Value: 50, RawValue: 49, Year: 2020})
			s, err := Freeze(Options{}, b)
			require.NoError(t, err)

			// The NaN row's metric is 0, inside [0,100]; the raw Value scan
			// must still exclude it.
			rows, err := s.RangeScan(ColValue, "0", "100")
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, float32(50), rows[0].Value)

			rows, err = s.RangeScan(ColRawValue, "0", "100")
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})
	}
}

func TestCrossLayoutEquivalence(t *testing.T) {
	stores := make(map[string]*Store, len(allLayouts))
	for _, layoutName := range allLayouts {
		s, err := Freeze(Options{Workers: 1}, sensorBuilder(t, layoutName, 500))
		require.NoError(t, err)
		stores[layoutName] = s
	}
	reference := stores[config.LayoutColumnar]

	scans := []struct {
		col    Column
		lo, hi string
	}{
		{ColValue, "10", "200"},
		{ColRawValue, "0", "50"},
		{ColYear, "2020", "2020"},
		{ColAQI, "100", "250"},
		{ColLatitude, "35", "45"},
		{ColSiteID, "2", "5"},
	}

	for layoutName, s := range stores {
		t.Run(layoutName, func(t *testing.T) {
			for _, sc := range scans {
				want, err := reference.RangeScan(sc.col, sc.lo, sc.hi)
				require.NoError(t, err)
				got, err := s.RangeScan(sc.col, sc.lo, sc.hi)
				require.NoError(t, err)
				assert.Equal(t, viewKeys(want), viewKeys(got), "column %s", sc.col)
			}

			wantMin, ok := reference.FindMin()
			require.True(t, ok)
			gotMin, ok := s.FindMin()
			require.True(t, ok)
			assert.Equal(t, wantMin.Metric, gotMin.Metric)

			wantMax, ok := reference.FindMax()
			require.True(t, ok)
			gotMax, ok := s.FindMax()
			require.True(t, ok)
			assert.Equal(t, wantMax.Metric, gotMax.Metric)

			for year := 2019; year <= 2021; year++ {
				assert.Equal(t, reference.SumByYear(year), s.SumByYear(year))
			}
		})
	}
}

func TestParallelSequentialEquivalence(t *testing.T) {
	old := parallelThreshold
	parallelThreshold = 1
	t.Cleanup(func() { parallelThreshold = old })

	b := sensorBuilder(t, config.LayoutColumnar, 1000)
	sequential, err := Freeze(Options{Workers: 1}, b)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 7} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			parallel, err := Freeze(Options{Workers: workers}, b)
			require.NoError(t, err)

			want, err := sequential.RangeScan(ColValue, "20", "180")
			require.NoError(t, err)
			got, err := parallel.RangeScan(ColValue, "20", "180")
			require.NoError(t, err)
			assert.Equal(t, viewKeys(want), viewKeys(got))

			wantMin, _ := sequential.FindMin()
			gotMin, _ := parallel.FindMin()
			assert.Equal(t, wantMin, gotMin)

			wantMax, _ := sequential.FindMax()
			gotMax, _ := parallel.FindMax()
			assert.Equal(t, wantMax, gotMax)

			for year := 2019; year <= 2021; year++ {
				assert.InDelta(t, sequential.SumByYear(year), parallel.SumByYear(year), 1e-6)
			}
		})
	}
}

func TestExtremumTieBreak(t *testing.T) {
	old := parallelThreshold
	parallelThreshold = 1
	t.Cleanup(func() { parallelThreshold = old })

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			b, err := NewBuilder(sniff.KindIndicator, config.LayoutCompact)
			require.NoError(t, err)
			d := b.Dicts()
			for i, year := range []int16{2001, 2002, 2003, 2004} {
				b.AppendIndicator(IndicatorRecord{
					CountryNameID: d.Intern(dict.CountryName, fmt.Sprintf("C%d", i)),
					Year:          year,
					Value:         7, // all tied
				})
			}
			s, err := Freeze(Options{Workers: workers}, b)
			require.NoError(t, err)

			minRow, ok := s.FindMin()
			require.True(t, ok)
			assert.Equal(t, 2001, minRow.Year)

			maxRow, ok := s.FindMax()
			require.True(t, ok)
			assert.Equal(t, 2001, maxRow.Year)
		})
	}
}

func TestFreezeRemapsDictionaryCodes(t *testing.T) {
	// Two builders intern overlapping keys in different orders; after the
	// freeze every stored row must resolve through the merged tables to its
	// original strings.
	b1, err := NewBuilder(sniff.KindIndicator, config.LayoutColumnar)
	require.NoError(t, err)
	b2, err := NewBuilder(sniff.KindIndicator, config.LayoutColumnar)
	require.NoError(t, err)

	appendRow := func(b *Builder, name, code string, value float64) {
		d := b.Dicts()
		b.AppendIndicator(IndicatorRecord{
			CountryNameID: d.Intern(dict.CountryName, name),
			CountryCodeID: d.Intern(dict.CountryCode, code),
			IndicatorID:   d.Intern(dict.Indicator, "pop|SP.POP.TOTL"),
			Year:          2020,
			Value:         value,
		})
	}

	appendRow(b1, "Brazil", "BRA", 1)
	appendRow(b1, "Japan", "JPN", 2)
	appendRow(b2, "Japan", "JPN", 3) // b2's code 0 collides with b1's "Brazil"
	appendRow(b2, "Chile", "CHL", 4)

	s, err := Freeze(Options{}, b1, b2)
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	wantNames := map[float64]string{1: "Brazil", 2: "Japan", 3: "Japan", 4: "Chile"}
	for i := 0; i < s.Len(); i++ {
		v := s.View(i)
		assert.Equal(t, wantNames[v.Metric], v.CountryName(s.Dicts()))
	}

	// Shared keys collapsed to one code.
	assert.Equal(t, 3, s.Dicts().Len(dict.CountryName))
	assert.Equal(t, 1, s.Dicts().Len(dict.Indicator))
}

func TestFreezeRejectsMixedBuilders(t *testing.T) {
	b1, err := NewBuilder(sniff.KindIndicator, config.LayoutColumnar)
	require.NoError(t, err)
	b2, err := NewBuilder(sniff.KindSensor, config.LayoutColumnar)
	require.NoError(t, err)

	_, err = Freeze(Options{}, b1, b2)
	assert.Error(t, err)

	_, err = Freeze(Options{})
	assert.Error(t, err)
}

func TestParseColumn(t *testing.T) {
	col, err := ParseColumn("Population")
	require.NoError(t, err)
	assert.Equal(t, ColPopulation, col)

	col, err = ParseColumn("UTCMinutes")
	require.NoError(t, err)
	assert.Equal(t, ColUTCMinutes, col)

	_, err = ParseColumn("Bogus")
	assert.Error(t, err)
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, workers int
		want       []span
	}{
		{10, 1, []span{{0, 10}}},
		{10, 3, []span{{0, 4}, {4, 7}, {7, 10}}},
		{3, 8, []span{{0, 1}, {1, 2}, {2, 3}}},
		{0, 4, []span{{0, 0}}},
	}
	for _, tt := range tests {
		got := partition(tt.n, tt.workers)
		assert.Equal(t, tt.want, got, "n=%d workers=%d", tt.n, tt.workers)
	}
}
