// Package seed fills an empty database with deterministic demo data: customers,
// their devices with telemetry history, tickets with snapshots, system events
// and a trailing window of daily analytics rows.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

const batchSize = 200

// Summary counts the rows a run wrote
type Summary struct {
	Skipped   bool
	Customers int
	Devices   int
	Telemetry int
	Tickets   int
	Events    int
	Analytics int
}

// Seeder generates demo data from a profile. The same seed and profile always
// produce the same rows, with timestamps relative to the run time.
type Seeder struct {
	db      *gorm.DB
	profile *Profile
	seed    uint64
	now     func() time.Time
}

// New creates a seeder
func New(db *gorm.DB, profile *Profile, seed uint64) *Seeder {
	return &Seeder{
		db:      db,
		profile: profile,
		seed:    seed,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds the database. It does nothing when customers already exist
// unless force is set, in which case every table is emptied first.
func (s *Seeder) Run(ctx context.Context, force bool) (*Summary, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&database.Customer{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if existing > 0 && !force {
		zap.L().Info("database already seeded, skipping", zap.Int64("customers", existing))
		return &Summary{Skipped: true}, nil
	}

	sum := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing > 0 {
			if err := truncate(tx); err != nil {
				return err
			}
		}
		g := newGenerator(s.profile, s.seed, s.now())
		g.generate()

		steps := []struct {
			rows  interface{}
			count int
			dst   *int
		}{
			{&g.customers, len(g.customers), &sum.Customers},
			{&g.devices, len(g.devices), &sum.Devices},
			{&g.telemetry, len(g.telemetry), &sum.Telemetry},
			{&g.tickets, len(g.tickets), &sum.Tickets},
			{&g.snapshots, len(g.snapshots), nil},
			{&g.events, len(g.events), &sum.Events},
			{&g.analytics, len(g.analytics), &sum.Analytics},
		}
		for _, st := range steps {
			if st.count == 0 {
				continue
			}
			if err := tx.CreateInBatches(st.rows, batchSize).Error; err != nil {
				return fmt.Errorf("insert %T: %w", st.rows, err)
			}
			if st.dst != nil {
				*st.dst = st.count
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("database seeded",
		zap.Uint64("seed", s.seed),
		zap.Int("customers", sum.Customers),
		zap.Int("devices", sum.Devices),
		zap.Int("telemetry", sum.Telemetry),
		zap.Int("tickets", sum.Tickets),
		zap.Int("events", sum.Events),
		zap.Int("analytics", sum.Analytics))
	return sum, nil
}

// truncate deletes every row, children first
func truncate(tx *gorm.DB) error {
	models := database.AllModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", models[i], err)
		}
	}
	return nil
}

// generator builds the rows in memory before they are inserted
type generator struct {
	p   *Profile
	rng *rand.Rand
	now time.Time
	ids map[string]bool

	customers []database.Customer
	devices   []database.Device
	telemetry []database.TelemetryData
	tickets   []database.Ticket
	snapshots []database.TicketTelemetry
	events    []database.SystemEvent
	analytics []database.Analytics
}

func newGenerator(p *Profile, seed uint64, now time.Time) *generator {
	return &generator{
		p:   p,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now.Truncate(time.Second),
		ids: map[string]bool{},
	}
}

func (g *generator) generate() {
	for i := 0; i < g.p.Customers; i++ {
		g.customer(i)
	}
	g.dailyAnalytics()
}

// id draws a prefixed id that has not been used in this run
func (g *generator) id(prefix string) string {
	for {
		id := fmt.Sprintf("%s-%08X", prefix, g.rng.Uint32())
		if !g.ids[id] {
			g.ids[id] = true
			return id
		}
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func (g *generator) between(lo, hi float64) float64 {
	return stats.Round1(lo + g.rng.Float64()*(hi-lo))
}

func (g *generator) ago(maxHours int) time.Time {
	return g.now.Add(-time.Duration(g.rng.IntN(maxHours*60+1)) * time.Minute)
}

func (g *generator) customer(i int) {
	name := g.p.Companies[i%len(g.p.Companies)]
	if i >= len(g.p.Companies) {
		name = fmt.Sprintf("%s %d", name, i/len(g.p.Companies)+1)
	}
	levels := []database.SupportLevel{database.SupportLevelBasic, database.SupportLevelPremium, database.SupportLevelEnterprise}
	start := g.now.AddDate(0, -g.rng.IntN(24)-1, 0)
	end := start.AddDate(g.rng.IntN(3)+1, 0, 0)

	c := database.Customer{
		CustomerID:    g.id(database.CustomerIDPrefix),
		Name:          name,
		Contact:       fmt.Sprintf("IT Desk %d", i+1),
		Email:         fmt.Sprintf("it-%d@example.com", i+1),
		Phone:         fmt.Sprintf("+1-555-%04d", g.rng.IntN(10000)),
		Location:      pick(g.rng, g.p.Locations),
		SupportLevel:  pick(g.rng, levels),
		Status:        database.CustomerStatusActive,
		ContractStart: &start,
		ContractEnd:   &end,
		CreatedAt:     start,
	}
	if g.rng.Float64() < 0.1 {
		c.Status = database.CustomerStatusInactive
	}

	span := g.p.DevicesPerCustomer.Max - g.p.DevicesPerCustomer.Min
	n := g.p.DevicesPerCustomer.Min + g.rng.IntN(span+1)
	for j := 0; j < n; j++ {
		g.device(&c)
	}
	c.DeviceCount = n
	g.customers = append(g.customers, c)
}

func riskFor(health int) database.RiskLevel {
	switch {
	case health < 40:
		return database.RiskLevelHigh
	case health < 70:
		return database.RiskLevelMedium
	default:
		return database.RiskLevelLow
	}
}

func (g *generator) device(c *database.Customer) {
	brand := pick(g.rng, g.p.Brands)
	osys := pick(g.rng, g.p.OperatingSystems)
	osVersion := ""
	if len(osys.Versions) > 0 {
		osVersion = pick(g.rng, osys.Versions)
	}

	health := 15 + g.rng.IntN(86)
	warranty := database.WarrantyStatusActive
	expiry := g.now.AddDate(0, g.rng.IntN(36)-12, 0)
	if expiry.Before(g.now) {
		warranty = database.WarrantyStatusExpired
	}

	d := database.Device{
		DeviceID:        g.id(database.DeviceIDPrefix),
		CustomerID:      c.CustomerID,
		Brand:           brand.Name,
		Model:           pick(g.rng, brand.Models),
		SerialNumber:    fmt.Sprintf("SN%010d", g.rng.Uint32()),
		Channel:         pick(g.rng, g.p.Channels),
		OSName:          osys.Name,
		OSVersion:       osVersion,
		FirmwareVersion: fmt.Sprintf("%d.%d.%d", 1+g.rng.IntN(3), g.rng.IntN(10), g.rng.IntN(20)),
		HealthScore:     health,
		RiskLevel:       riskFor(health),
		LastSeen:        g.ago(72),
		WarrantyStatus:  warranty,
		WarrantyExpiry:  &expiry,
		BatteryHealth:   g.between(float64(health)*0.6, 100),
		CPUUsage:        g.between(5, 95),
		MemoryUsage:     g.between(20, 95),
		StorageUsage:    g.between(15, 98),
		Temperature:     g.between(35, 90),
		CrashCount:      g.rng.IntN(max(1, (100-health)/10)),
		CreatedAt:       c.CreatedAt.Add(time.Duration(g.rng.IntN(720)) * time.Hour),
	}
	if d.CreatedAt.After(g.now) {
		d.CreatedAt = g.now
	}
	g.devices = append(g.devices, d)

	g.events = append(g.events, database.SystemEvent{
		Type:       database.EventTypeDeviceRegistered,
		Severity:   database.EventSeverityInfo,
		Message:    fmt.Sprintf("Device %s %s registered for %s", d.Brand, d.Model, c.Name),
		DeviceID:   &d.DeviceID,
		CustomerID: &c.CustomerID,
		CreatedAt:  d.CreatedAt,
	})

	g.deviceTelemetry(&d)
	if g.rng.Float64() < g.p.TicketRate {
		g.ticket(&d)
	}
}

func (g *generator) deviceTelemetry(d *database.Device) {
	if g.p.TelemetryHours == 0 {
		return
	}
	step := time.Duration(g.p.TelemetryIntervalMinutes) * time.Minute
	for t := g.now.Add(-time.Duration(g.p.TelemetryHours) * time.Hour); !t.After(g.now); t = t.Add(step) {
		g.telemetry = append(g.telemetry, database.TelemetryData{
			DeviceID:      d.DeviceID,
			RecordedAt:    t,
			CPUUsage:      clamp(d.CPUUsage+g.between(-15, 15), 0, 100),
			MemoryUsage:   clamp(d.MemoryUsage+g.between(-10, 10), 0, 100),
			StorageUsage:  d.StorageUsage,
			BatteryHealth: d.BatteryHealth,
			Temperature:   clamp(d.Temperature+g.between(-5, 5), 20, 110),
			Metrics:       datatypes.JSONMap{"uptimeHours": g.rng.IntN(500)},
		})
	}
}

func clamp(v, lo, hi float64) float64 {
	return stats.Round1(min(max(v, lo), hi))
}

func (g *generator) ticket(d *database.Device) {
	tpl := pick(g.rng, g.p.TicketTemplates)
	priority := database.TicketPriorityLow
	switch d.RiskLevel {
	case database.RiskLevelHigh:
		priority = pick(g.rng, []database.TicketPriority{database.TicketPriorityHigh, database.TicketPriorityCritical})
	case database.RiskLevelMedium:
		priority = database.TicketPriorityMedium
	}
	statuses := []database.TicketStatus{
		database.TicketStatusAnalysis, database.TicketStatusAssigned, database.TicketStatusWaiting,
		database.TicketStatusResolved, database.TicketStatusClosed,
	}

	created := g.ago(24 * 14)
	t := database.Ticket{
		TicketID:    g.id(database.TicketIDPrefix),
		DeviceID:    d.DeviceID,
		CustomerID:  d.CustomerID,
		Title:       tpl.Title,
		Description: tpl.Description,
		Category:    tpl.Category,
		Status:      pick(g.rng, statuses),
		Priority:    priority,
		Confidence:  50 + g.rng.IntN(50),
		CreatedAt:   created,
	}
	if t.Status.IsTerminal() {
		resolved := created.Add(time.Duration(1+g.rng.IntN(72)) * time.Hour)
		if resolved.After(g.now) {
			resolved = g.now
		}
		t.ResolvedAt = &resolved
	}
	g.tickets = append(g.tickets, t)

	g.snapshots = append(g.snapshots, database.TicketTelemetry{
		TicketID:      t.TicketID,
		CPUUsage:      d.CPUUsage,
		MemoryUsage:   d.MemoryUsage,
		StorageUsage:  d.StorageUsage,
		BatteryHealth: d.BatteryHealth,
		Temperature:   d.Temperature,
		Metrics:       datatypes.JSONMap{"crashCount": d.CrashCount},
		CapturedAt:    created,
	})

	severity := database.EventSeverityInfo
	switch priority {
	case database.TicketPriorityCritical:
		severity = database.EventSeverityCritical
	case database.TicketPriorityHigh:
		severity = database.EventSeverityWarning
	}
	g.events = append(g.events, database.SystemEvent{
		Type:       database.EventTypeTicketCreated,
		Severity:   severity,
		Message:    fmt.Sprintf("Ticket %s opened: %s", t.TicketID, t.Title),
		DeviceID:   &t.DeviceID,
		TicketID:   &t.TicketID,
		CustomerID: &t.CustomerID,
		CreatedAt:  created,
	})
}

// dailyAnalytics writes one row per past day, drifting around the current
// fleet figures
func (g *generator) dailyAnalytics() {
	if g.p.AnalyticsDays == 0 {
		return
	}
	total := int64(len(g.devices))
	var high int64
	var health float64
	for _, d := range g.devices {
		if d.RiskLevel == database.RiskLevelHigh {
			high++
		}
		health += float64(d.HealthScore)
	}
	avg := stats.Ratio(&health, total)

	today := database.DayStart(g.now)
	for i := g.p.AnalyticsDays; i >= 1; i-- {
		g.analytics = append(g.analytics, database.Analytics{
			Date:               today.AddDate(0, 0, -i),
			TotalDevices:       total,
			ActiveDevices:      total - int64(g.rng.IntN(int(total/5)+1)),
			HighRiskDevices:    max(0, high+int64(g.rng.IntN(5))-2),
			TicketsCreated:     int64(g.rng.IntN(8)),
			TicketsResolved:    int64(g.rng.IntN(6)),
			AverageHealthScore: clamp(avg+g.between(-3, 3), 0, 100),
			CriticalEvents:     int64(g.rng.IntN(3)),
		})
	}
}
