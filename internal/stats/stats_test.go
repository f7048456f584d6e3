package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetpulse/fleetpulse/internal/query"
)

func ptr(v float64) *float64 { return &v }

func TestDistribution(t *testing.T) {
	tests := []struct {
		name string
		rows []query.GroupCount
		want map[string]int64
	}{
		{
			name: "lowercases keys",
			rows: []query.GroupCount{{Value: "HIGH", Count: 3}, {Value: "LOW", Count: 7}},
			want: map[string]int64{"high": 3, "low": 7},
		},
		{
			name: "omits zero counts and empty values",
			rows: []query.GroupCount{{Value: "MEDIUM", Count: 0}, {Value: "", Count: 2}, {Value: "HIGH", Count: 1}},
			want: map[string]int64{"high": 1},
		},
		{
			name: "merges keys differing only by case",
			rows: []query.GroupCount{{Value: "Dell", Count: 2}, {Value: "DELL", Count: 1}},
			want: map[string]int64{"dell": 3},
		},
		{
			name: "empty input",
			rows: nil,
			want: map[string]int64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distribution(tt.rows))
		})
	}
}

func TestTotalAndCountOf(t *testing.T) {
	rows := []query.GroupCount{{Value: "OPEN", Count: 2}, {Value: "closed", Count: 5}}
	assert.EqualValues(t, 7, Total(rows))
	assert.EqualValues(t, 5, CountOf(rows, "CLOSED"))
	assert.EqualValues(t, 0, CountOf(rows, "missing"))
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil))
	assert.Equal(t, 0.0, Average(ptr(math.NaN())))
	assert.Equal(t, 72.3, Average(ptr(72.34)))
	assert.Equal(t, 72.4, Average(ptr(72.36)))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(nil, 4))
	assert.Equal(t, 0.0, Ratio(ptr(10), 0))
	assert.Equal(t, 3.3, Ratio(ptr(10), 3))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 25.0, Percent(1, 4))
	assert.Equal(t, 66.7, Percent(2, 3))
}
