package forecast

import (
	"testing"
	"time"

	"github.com/oncare/pharmalytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(medicineID int64, qty int, at time.Time) domain.OrderLine {
	return domain.OrderLine{OrderID: 1, MedicineID: medicineID, Quantity: qty, CreatedAt: at}
}

func TestBuildSeriesFillsGaps(t *testing.T) {
	// Sales in week 1 and week 4; weeks 2 and 3 must appear with zero quantity.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	lines := []domain.OrderLine{
		line(1, 5, monday.Add(26*time.Hour)),
		line(1, 3, monday.Add(50*time.Hour)),
		line(1, 7, monday.AddDate(0, 0, 21)),
	}

	series, err := BuildSeries(lines, 1, domain.GranularityWeekly)
	require.NoError(t, err)
	require.Len(t, series, 4)

	assert.Equal(t, monday, series[0].PeriodStart)
	assert.Equal(t, 8, series[0].Quantity)
	assert.Equal(t, 0, series[1].Quantity)
	assert.Equal(t, 0, series[2].Quantity)
	assert.Equal(t, 7, series[3].Quantity)

	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].PeriodStart.AddDate(0, 0, 7), series[i].PeriodStart)
	}
}

func TestBuildSeriesWeeklyAlignsToMonday(t *testing.T) {
	// A Sunday sale belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	series, err := BuildSeries([]domain.OrderLine{line(1, 2, sunday)}, 1, domain.GranularityWeekly)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), series[0].PeriodStart)
	assert.Equal(t, time.Monday, series[0].PeriodStart.Weekday())
}

func TestBuildSeriesIgnoresOtherMedicines(t *testing.T) {
	at := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lines := []domain.OrderLine{
		line(1, 5, at),
		line(2, 100, at),
	}
	series, err := BuildSeries(lines, 1, domain.GranularityDaily)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 5, series[0].Quantity)
}

func TestBuildSeriesNoData(t *testing.T) {
	_, err := BuildSeries(nil, 42, domain.GranularityMonthly)
	var dataErr *domain.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, int64(42), dataErr.MedicineID)
}

func TestQuantities(t *testing.T) {
	series := []domain.SalesObservation{{Quantity: 3}, {Quantity: 0}, {Quantity: 9}}
	assert.Equal(t, []float64{3, 0, 9}, Quantities(series))
}
