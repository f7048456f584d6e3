package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

// Dashboard time ranges
var timeRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// TimeRanges lists the accepted dashboard time ranges
func TimeRanges() []string {
	return []string{"24h", "7d", "30d", "90d"}
}

// DefaultTimeRange is used when the dashboard request names none
const DefaultTimeRange = "7d"

// Trend window bounds, in days
const (
	DefaultTrendDays = 30
	MaxTrendDays     = 90
)

// activeWindow is how recently a device must have reported to count as active
const activeWindow = 24 * time.Hour

// AnalyticsService computes dashboard figures and the daily rollup
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard is the fleet overview for one time range
type Dashboard struct {
	TimeRange string               `json:"timeRange"`
	Since     time.Time            `json:"since"`
	Devices   DashboardDevices     `json:"devices"`
	Tickets   DashboardTickets     `json:"tickets"`
	Customers DashboardCustomers   `json:"customers"`
	Events    DashboardEvents      `json:"events"`
	History   []database.Analytics `json:"history"`
}

// DashboardDevices summarizes the fleet
type DashboardDevices struct {
	Total              int64            `json:"total"`
	Active             int64            `json:"active"`
	HighRisk           int64            `json:"highRisk"`
	AverageHealthScore float64          `json:"averageHealthScore"`
	HighRiskPercent    float64          `json:"highRiskPercent"`
	ByRiskLevel        map[string]int64 `json:"byRiskLevel"`
	ByBrand            map[string]int64 `json:"byBrand"`
}

// DashboardTickets summarizes ticket flow within the range
type DashboardTickets struct {
	Total                  int64            `json:"total"`
	Open                   int64            `json:"open"`
	CreatedInRange         int64            `json:"createdInRange"`
	ResolvedInRange        int64            `json:"resolvedInRange"`
	AverageResolutionHours float64          `json:"averageResolutionHours"`
	ByStatus               map[string]int64 `json:"byStatus"`
	ByPriority             map[string]int64 `json:"byPriority"`
}

// DashboardCustomers summarizes the customer base
type DashboardCustomers struct {
	Total          int64            `json:"total"`
	Active         int64            `json:"active"`
	BySupportLevel map[string]int64 `json:"bySupportLevel"`
}

// DashboardEvents summarizes the event log within the range
type DashboardEvents struct {
	Critical int64                  `json:"critical"`
	Recent   []database.SystemEvent `json:"recent"`
}

// Dashboard computes the overview for timeRange, one of TimeRanges
func (s *AnalyticsService) Dashboard(ctx context.Context, timeRange string) (*Dashboard, error) {
	window, ok := timeRanges[timeRange]
	if !ok {
		return nil, fmt.Errorf("unknown time range %q", timeRange)
	}
	now := s.now()
	since := now.Add(-window)
	d := &Dashboard{TimeRange: timeRange, Since: since}

	if err := s.deviceSummary(ctx, now, &d.Devices); err != nil {
		return nil, err
	}
	if err := s.ticketSummary(ctx, since, &d.Tickets); err != nil {
		return nil, err
	}
	if err := s.customerSummary(ctx, &d.Customers); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&database.SystemEvent{}).
		Where("severity = ? AND created_at >= ?", database.EventSeverityCritical, since).
		Count(&d.Events.Critical).Error; err != nil {
		return nil, fmt.Errorf("count critical events: %w", err)
	}
	d.Events.Recent = []database.SystemEvent{}
	if err := db.Order("created_at DESC").Order("id DESC").Limit(5).Find(&d.Events.Recent).Error; err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	d.History = []database.Analytics{}
	if err := db.Where("date >= ?", database.DayStart(since)).Order("date ASC").Find(&d.History).Error; err != nil {
		return nil, fmt.Errorf("load analytics history: %w", err)
	}
	return d, nil
}

func (s *AnalyticsService) deviceSummary(ctx context.Context, now time.Time, out *DashboardDevices) error {
	all := query.New()
	byRisk, err := query.CountBy[database.Device](ctx, s.db, all, "risk_level")
	if err != nil {
		return err
	}
	byBrand, err := query.CountBy[database.Device](ctx, s.db, all, "brand")
	if err != nil {
		return err
	}
	avgHealth, err := query.Avg[database.Device](ctx, s.db, all, "health_score")
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&database.Device{}).
		Where("last_seen >= ?", now.Add(-activeWindow)).
		Count(&out.Active).Error; err != nil {
		return fmt.Errorf("count active devices: %w", err)
	}

	out.Total = stats.Total(byRisk)
	out.HighRisk = stats.CountOf(byRisk, string(database.RiskLevelHigh))
	out.AverageHealthScore = stats.Average(avgHealth)
	out.HighRiskPercent = stats.Percent(out.HighRisk, out.Total)
	out.ByRiskLevel = stats.Distribution(byRisk)
	out.ByBrand = stats.Distribution(byBrand)
	return nil
}

func (s *AnalyticsService) ticketSummary(ctx context.Context, since time.Time, out *DashboardTickets) error {
	all := query.New()
	byStatus, err := query.CountBy[database.Ticket](ctx, s.db, all, "status")
	if err != nil {
		return err
	}
	byPriority, err := query.CountBy[database.Ticket](ctx, s.db, all, "priority")
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&database.Ticket{}).Where("created_at >= ?", since).Count(&out.CreatedInRange).Error; err != nil {
		return fmt.Errorf("count created tickets: %w", err)
	}

	var resolved []database.Ticket
	if err := db.Select("created_at", "resolved_at").
		Where("resolved_at IS NOT NULL AND resolved_at >= ?", since).
		Find(&resolved).Error; err != nil {
		return fmt.Errorf("load resolved tickets: %w", err)
	}

	var hours float64
	for _, t := range resolved {
		hours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
	}

	out.Total = stats.Total(byStatus)
	for _, st := range database.OpenTicketStatuses() {
		out.Open += stats.CountOf(byStatus, string(st))
	}
	out.ResolvedInRange = int64(len(resolved))
	out.AverageResolutionHours = stats.Ratio(&hours, out.ResolvedInRange)
	out.ByStatus = stats.Distribution(byStatus)
	out.ByPriority = stats.Distribution(byPriority)
	return nil
}

func (s *AnalyticsService) customerSummary(ctx context.Context, out *DashboardCustomers) error {
	all := query.New()
	bySupport, err := query.CountBy[database.Customer](ctx, s.db, all, "support_level")
	if err != nil {
		return err
	}
	byStatus, err := query.CountBy[database.Customer](ctx, s.db, all, "status")
	if err != nil {
		return err
	}
	out.Total = stats.Total(byStatus)
	out.Active = stats.CountOf(byStatus, string(database.CustomerStatusActive))
	out.BySupportLevel = stats.Distribution(bySupport)
	return nil
}

// TrendPoint is one day of the synthetic trend series
type TrendPoint struct {
	Date               string  `json:"date"`
	AverageHealthScore float64 `json:"averageHealthScore"`
	ActiveDevices      int     `json:"activeDevices"`
	TicketsCreated     int     `json:"ticketsCreated"`
	TicketsResolved    int     `json:"ticketsResolved"`
	CriticalEvents     int     `json:"criticalEvents"`
}

// Trends returns a synthetic daily series ending today. The values are not
// derived from stored rows; the same calendar day always yields the same
// series.
func (s *AnalyticsService) Trends(days int) []TrendPoint {
	if days < 1 || days > MaxTrendDays {
		days = DefaultTrendDays
	}
	today := database.DayStart(s.now())
	rng := dayRand(today, "trends")

	points := make([]TrendPoint, 0, days)
	health := 70 + rng.Float64()*15
	active := 400 + rng.IntN(200)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		health += rng.Float64()*2 - 1
		health = min(max(health, 40), 98)
		active += rng.IntN(21) - 10
		created := 5 + rng.IntN(20)
		points = append(points, TrendPoint{
			Date:               day.Format(time.DateOnly),
			AverageHealthScore: stats.Round1(health),
			ActiveDevices:      active,
			TicketsCreated:     created,
			TicketsResolved:    max(0, created-5+rng.IntN(10)),
			CriticalEvents:     rng.IntN(6),
		})
	}
	return points
}

// Prediction is a synthetic failure forecast for one device
type Prediction struct {
	DeviceID           string             `json:"device_id"`
	CustomerID         string             `json:"customer_id"`
	Brand              string             `json:"brand"`
	Model              string             `json:"model"`
	RiskLevel          database.RiskLevel `json:"riskLevel"`
	HealthScore        int                `json:"healthScore"`
	PredictedIssue     string             `json:"predictedIssue"`
	FailureProbability float64            `json:"failureProbability"`
	EstimatedDays      int                `json:"estimatedDaysToFailure"`
	RecommendedAction  string             `json:"recommendedAction"`
}

// Predictions is the synthetic forecast block
type Predictions struct {
	GeneratedAt       time.Time    `json:"generatedAt"`
	ModelVersion      string       `json:"modelVersion"`
	PredictedFailures int          `json:"predictedFailures30d"`
	AverageConfidence float64      `json:"averageConfidence"`
	Devices           []Prediction `json:"devices"`
}

var predictedIssues = []struct{ issue, action string }{
	{"Battery failure", "Schedule battery replacement"},
	{"Storage exhaustion", "Clean up storage or expand capacity"},
	{"Thermal throttling", "Inspect cooling and clean vents"},
	{"Repeated application crashes", "Reimage or update firmware"},
	{"Memory pressure", "Upgrade memory or reduce workload"},
}

// Predictions forecasts failures for the riskiest devices. The forecast values
// are synthetic and stable for a calendar day.
func (s *AnalyticsService) Predictions(ctx context.Context, limit int) (*Predictions, error) {
	if limit < 1 {
		limit = 10
	}
	spec := query.New().OrderBy(deviceOrder...)
	page, err := query.List[database.Device](ctx, s.db, spec, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("load devices for predictions: %w", err)
	}

	now := s.now()
	today := database.DayStart(now)
	out := &Predictions{GeneratedAt: now, ModelVersion: "synthetic-1", Devices: make([]Prediction, 0, len(page.Items))}

	var confidence float64
	for _, d := range page.Items {
		rng := dayRand(today, d.DeviceID)
		base := float64(100-d.HealthScore) / 100
		p := min(0.99, max(0.01, base*0.8+rng.Float64()*0.2))
		issue := predictedIssues[rng.IntN(len(predictedIssues))]
		out.Devices = append(out.Devices, Prediction{
			DeviceID:           d.DeviceID,
			CustomerID:         d.CustomerID,
			Brand:              d.Brand,
			Model:              d.Model,
			RiskLevel:          d.RiskLevel,
			HealthScore:        d.HealthScore,
			PredictedIssue:     issue.issue,
			FailureProbability: stats.Round1(p * 100),
			EstimatedDays:      int(5 + (1-p)*85),
			RecommendedAction:  issue.action,
		})
		if p >= 0.5 {
			out.PredictedFailures++
		}
		confidence += 60 + rng.Float64()*35
	}
	out.AverageConfidence = stats.Ratio(&confidence, int64(len(page.Items)))
	return out, nil
}

// dayRand returns a generator seeded by the calendar day and a salt
func dayRand(day time.Time, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(salt))
	return rand.New(rand.NewPCG(uint64(day.Unix()), h.Sum64()))
}

// Rollup computes the counters for the UTC day containing day and upserts
// its analytics row.
func (s *AnalyticsService) Rollup(ctx context.Context, day time.Time) (*database.Analytics, error) {
	start := database.DayStart(day)
	end := start.Add(24 * time.Hour)
	db := s.db.WithContext(ctx)

	row := &database.Analytics{Date: start}
	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&row.TotalDevices, &database.Device{}, "1 = 1", nil},
		{&row.ActiveDevices, &database.Device{}, "last_seen >= ? AND last_seen < ?", []interface{}{start, end}},
		{&row.HighRiskDevices, &database.Device{}, "risk_level = ?", []interface{}{database.RiskLevelHigh}},
		{&row.TicketsCreated, &database.Ticket{}, "created_at >= ? AND created_at < ?", []interface{}{start, end}},
		{&row.TicketsResolved, &database.Ticket{}, "resolved_at >= ? AND resolved_at < ?", []interface{}{start, end}},
		{&row.CriticalEvents, &database.SystemEvent{}, "severity = ? AND created_at >= ? AND created_at < ?", []interface{}{database.EventSeverityCritical, start, end}},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("rollup count: %w", err)
		}
	}

	avg, err := query.Avg[database.Device](ctx, s.db, nil, "health_score")
	if err != nil {
		return nil, err
	}
	row.AverageHealthScore = stats.Average(avg)

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_devices", "active_devices", "high_risk_devices",
			"tickets_created", "tickets_resolved", "average_health_score",
			"critical_events", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert analytics for %s: %w", start.Format(time.DateOnly), err)
	}
	return row, nil
}
