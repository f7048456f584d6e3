package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_profile.yaml
var defaultProfile []byte

// Range is an inclusive integer range
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Brand is a device manufacturer and the models drawn for it
type Brand struct {
	Name   string   `yaml:"name"`
	Models []string `yaml:"models"`
}

// OperatingSystem is an OS name and the versions drawn for it
type OperatingSystem struct {
	Name     string   `yaml:"name"`
	Versions []string `yaml:"versions"`
}

// TicketTemplate is the text of a generated ticket
type TicketTemplate struct {
	Title       string `yaml:"title"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// Profile describes how much demo data to generate and what it looks like
type Profile struct {
	Customers                int               `yaml:"customers"`
	DevicesPerCustomer       Range             `yaml:"devicesPerCustomer"`
	TelemetryHours           int               `yaml:"telemetryHours"`
	TelemetryIntervalMinutes int               `yaml:"telemetryIntervalMinutes"`
	TicketRate               float64           `yaml:"ticketRate"`
	AnalyticsDays            int               `yaml:"analyticsDays"`
	Brands                   []Brand           `yaml:"brands"`
	Channels                 []string          `yaml:"channels"`
	Locations                []string          `yaml:"locations"`
	Companies                []string          `yaml:"companies"`
	OperatingSystems         []OperatingSystem `yaml:"operatingSystems"`
	TicketTemplates          []TicketTemplate  `yaml:"ticketTemplates"`
}

// DefaultProfile returns the embedded profile
func DefaultProfile() (*Profile, error) {
	return ParseProfile(defaultProfile)
}

// LoadProfile reads a profile from path, or the embedded default when path
// is empty
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML profile
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse seed profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every list the generator draws from is populated
func (p *Profile) Validate() error {
	var errs []error
	if p.Customers < 1 {
		errs = append(errs, errors.New("customers must be at least 1"))
	}
	if p.DevicesPerCustomer.Min < 0 || p.DevicesPerCustomer.Max < p.DevicesPerCustomer.Min {
		errs = append(errs, fmt.Errorf("devicesPerCustomer range %d..%d is invalid", p.DevicesPerCustomer.Min, p.DevicesPerCustomer.Max))
	}
	if p.TelemetryHours < 0 {
		errs = append(errs, errors.New("telemetryHours must not be negative"))
	}
	if p.TelemetryHours > 0 && p.TelemetryIntervalMinutes < 1 {
		errs = append(errs, errors.New("telemetryIntervalMinutes must be at least 1"))
	}
	if p.TicketRate < 0 || p.TicketRate > 1 {
		errs = append(errs, errors.New("ticketRate must be between 0 and 1"))
	}
	if p.AnalyticsDays < 0 {
		errs = append(errs, errors.New("analyticsDays must not be negative"))
	}
	if len(p.Brands) == 0 {
		errs = append(errs, errors.New("at least one brand is required"))
	}
	for _, b := range p.Brands {
		if len(b.Models) == 0 {
			errs = append(errs, fmt.Errorf("brand %q has no models", b.Name))
		}
	}
	if len(p.Channels) == 0 {
		errs = append(errs, errors.New("at least one channel is required"))
	}
	if len(p.Locations) == 0 {
		errs = append(errs, errors.New("at least one location is required"))
	}
	if len(p.Companies) == 0 {
		errs = append(errs, errors.New("at least one company is required"))
	}
	if len(p.OperatingSystems) == 0 {
		errs = append(errs, errors.New("at least one operating system is required"))
	}
	if p.TicketRate > 0 && len(p.TicketTemplates) == 0 {
		errs = append(errs, errors.New("ticket templates are required when ticketRate is above 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid seed profile: %w", errors.Join(errs...))
	}
	return nil
}
