package query_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/testhelpers"
)

func deviceOrder() []string {
	return []string{
		query.RankCase("risk_level", "HIGH", "MEDIUM", "LOW"),
		"health_score ASC",
		"last_seen DESC",
		"device_id ASC",
	}
}

func TestList_PaginatesFilteredRows(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	customer := testhelpers.NewCustomerBuilder().Build()
	testhelpers.MustCreate(t, db, &customer)
	for i := 0; i < 23; i++ {
		d := testhelpers.NewDeviceBuilder(customer.CustomerID).
			WithID(fmt.Sprintf("DEV-H%07d", i)).
			WithRisk(database.RiskLevelHigh).
			WithHealth(20 + i).
			Build()
		testhelpers.MustCreate(t, db, &d)
	}
	for i := 0; i < 5; i++ {
		d := testhelpers.NewDeviceBuilder(customer.CustomerID).WithRisk(database.RiskLevelLow).Build()
		testhelpers.MustCreate(t, db, &d)
	}

	spec := query.New().Eq("risk_level", "HIGH").OrderBy(deviceOrder()...)

	page3, err := query.List[database.Device](ctx, db, spec, 20, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 23, page3.Total)
	require.Len(t, page3.Items, 3)
	assert.Equal(t, 40, page3.Items[0].HealthScore)

	page4, err := query.List[database.Device](ctx, db, spec, 30, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 23, page4.Total)
	assert.Empty(t, page4.Items)
	assert.NotNil(t, page4.Items)
}

func TestList_CanonicalDeviceOrder(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	customer := testhelpers.NewCustomerBuilder().Build()
	devices := []database.Device{
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithID("DEV-LOW").WithRisk(database.RiskLevelLow).WithHealth(10).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithID("DEV-MED").WithRisk(database.RiskLevelMedium).WithHealth(50).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithID("DEV-HI-B").WithRisk(database.RiskLevelHigh).WithHealth(30).WithLastSeen(now.Add(-time.Hour)).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithID("DEV-HI-A").WithRisk(database.RiskLevelHigh).WithHealth(30).WithLastSeen(now).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithID("DEV-HI-C").WithRisk(database.RiskLevelHigh).WithHealth(15).Build(),
	}
	testhelpers.MustCreate(t, db, &customer)
	for i := range devices {
		testhelpers.MustCreate(t, db, &devices[i])
	}

	res, err := query.List[database.Device](ctx, db, query.New().OrderBy(deviceOrder()...), 0, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Items))
	for _, d := range res.Items {
		ids = append(ids, d.DeviceID)
	}
	assert.Equal(t, []string{"DEV-HI-C", "DEV-HI-A", "DEV-HI-B", "DEV-MED", "DEV-LOW"}, ids)
}

func TestSearch_CaseInsensitiveAndLiteral(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	customer := testhelpers.NewCustomerBuilder().Build()
	testhelpers.MustCreate(t, db, &customer)
	for _, d := range []database.Device{
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithModel("Latitude").WithSerial("AB-1").Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("HP").WithModel("EliteBook 100%").WithSerial("CD-2").Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Lenovo").WithModel("ThinkPad").WithSerial("DELL_X").Build(),
	} {
		d := d
		testhelpers.MustCreate(t, db, &d)
	}

	tests := []struct {
		name string
		term string
		want int64
	}{
		{"mixed case matches brand and serial", "dEl", 2},
		{"percent is literal", "100%", 1},
		{"underscore is literal", "l_x", 1},
		{"underscore does not match any character", "l_l", 0},
		{"blank term matches all", "   ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := query.New().Search(tt.term, "brand", "model", "serial_number")
			res, err := query.List[database.Device](ctx, db, spec, 0, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
		})
	}
}

func TestSpec_FiltersAreConjunctive(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	customer := testhelpers.NewCustomerBuilder().Build()
	testhelpers.MustCreate(t, db, &customer)
	for _, d := range []database.Device{
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelHigh).WithHealth(30).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelHigh).WithHealth(80).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("HP").WithRisk(database.RiskLevelHigh).WithHealth(30).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelLow).WithHealth(30).Build(),
	} {
		d := d
		testhelpers.MustCreate(t, db, &d)
	}

	maxHealth := 50
	spec := query.New().
		Eq("risk_level", "HIGH").
		Eq("brand", "Dell").
		Eq("channel", "").
		AtMost("health_score", &maxHealth).
		AtLeast("health_score", nil)
	assert.Equal(t, 3, spec.Conditions())

	res, err := query.List[database.Device](ctx, db, spec, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestCountBy_UsesSameFilter(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	customer := testhelpers.NewCustomerBuilder().Build()
	testhelpers.MustCreate(t, db, &customer)
	for _, d := range []database.Device{
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelHigh).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelLow).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("Dell").WithRisk(database.RiskLevelLow).Build(),
		testhelpers.NewDeviceBuilder(customer.CustomerID).WithBrand("HP").WithRisk(database.RiskLevelMedium).Build(),
	} {
		d := d
		testhelpers.MustCreate(t, db, &d)
	}

	groups, err := query.CountBy[database.Device](ctx, db, query.New().Eq("brand", "Dell"), "risk_level")
	require.NoError(t, err)
	assert.Equal(t, []query.GroupCount{{Value: "HIGH", Count: 1}, {Value: "LOW", Count: 2}}, groups)
}

func TestAvgAndSum(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	avg, err := query.Avg[database.Device](ctx, db, nil, "health_score")
	require.NoError(t, err)
	assert.Nil(t, avg, "average over no rows should be nil")

	customer := testhelpers.NewCustomerBuilder().Build()
	testhelpers.MustCreate(t, db, &customer)
	for _, h := range []int{70, 80, 81} {
		d := testhelpers.NewDeviceBuilder(customer.CustomerID).WithHealth(h).Build()
		testhelpers.MustCreate(t, db, &d)
	}

	avg, err = query.Avg[database.Device](ctx, db, nil, "health_score")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 77.0, *avg, 0.001)

	minHealth := 76
	sum, err := query.Sum[database.Device](ctx, db, query.New().AtLeast("health_score", &minHealth), "health_score")
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.InDelta(t, 161.0, *sum, 0.001)
}

func TestRankCase(t *testing.T) {
	got := query.RankCase("priority", "CRITICAL", "HIGH")
	assert.Equal(t, "CASE priority WHEN 'CRITICAL' THEN 2 WHEN 'HIGH' THEN 1 ELSE 0 END DESC", got)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, query.EscapeLike(`50%_off\`))
}
