package database

import "slices"

// Enum is implemented by every closed string variant stored in the database.
// Request validation uses it to reject unknown values at the boundary.
type Enum interface {
	Valid() bool
	Values() []string
}

// RiskLevel summarizes a device's predicted failure risk
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

var riskLevels = []string{string(RiskLevelLow), string(RiskLevelMedium), string(RiskLevelHigh)}

func (r RiskLevel) Valid() bool      { return slices.Contains(riskLevels, string(r)) }
func (r RiskLevel) Values() []string { return riskLevels }

// Rank orders risk levels for sorting: HIGH > MEDIUM > LOW.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLevelHigh:
		return 3
	case RiskLevelMedium:
		return 2
	case RiskLevelLow:
		return 1
	default:
		return 0
	}
}

// TicketStatus is the lifecycle state of a ticket. Storage does not enforce
// transitions between states.
type TicketStatus string

const (
	TicketStatusAnalysis TicketStatus = "ANALYSIS"
	TicketStatusAssigned TicketStatus = "ASSIGNED"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
	TicketStatusCritical TicketStatus = "CRITICAL"
	TicketStatusWaiting  TicketStatus = "WAITING"
)

var ticketStatuses = []string{
	string(TicketStatusAnalysis),
	string(TicketStatusAssigned),
	string(TicketStatusResolved),
	string(TicketStatusClosed),
	string(TicketStatusCritical),
	string(TicketStatusWaiting),
}

func (s TicketStatus) Valid() bool      { return slices.Contains(ticketStatuses, string(s)) }
func (s TicketStatus) Values() []string { return ticketStatuses }

// IsTerminal reports whether the status closes out the ticket
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// OpenTicketStatuses are the statuses counted as open work on dashboards
func OpenTicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusAnalysis, TicketStatusAssigned, TicketStatusCritical, TicketStatusWaiting}
}

// TicketPriority ranks how urgently a ticket needs attention
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

var ticketPriorities = []string{
	string(TicketPriorityLow),
	string(TicketPriorityMedium),
	string(TicketPriorityHigh),
	string(TicketPriorityCritical),
}

func (p TicketPriority) Valid() bool      { return slices.Contains(ticketPriorities, string(p)) }
func (p TicketPriority) Values() []string { return ticketPriorities }

// SupportLevel is the customer service tier
type SupportLevel string

const (
	SupportLevelBasic      SupportLevel = "BASIC"
	SupportLevelPremium    SupportLevel = "PREMIUM"
	SupportLevelEnterprise SupportLevel = "ENTERPRISE"
)

var supportLevels = []string{string(SupportLevelBasic), string(SupportLevelPremium), string(SupportLevelEnterprise)}

func (l SupportLevel) Valid() bool      { return slices.Contains(supportLevels, string(l)) }
func (l SupportLevel) Values() []string { return supportLevels }

// CustomerStatus is the account state of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "ACTIVE"
	CustomerStatusInactive  CustomerStatus = "INACTIVE"
	CustomerStatusSuspended CustomerStatus = "SUSPENDED"
)

var customerStatuses = []string{string(CustomerStatusActive), string(CustomerStatusInactive), string(CustomerStatusSuspended)}

func (s CustomerStatus) Valid() bool      { return slices.Contains(customerStatuses, string(s)) }
func (s CustomerStatus) Values() []string { return customerStatuses }

// WarrantyStatus tracks device warranty coverage
type WarrantyStatus string

const (
	WarrantyStatusActive  WarrantyStatus = "ACTIVE"
	WarrantyStatusExpired WarrantyStatus = "EXPIRED"
	WarrantyStatusNone    WarrantyStatus = "NONE"
)

var warrantyStatuses = []string{string(WarrantyStatusActive), string(WarrantyStatusExpired), string(WarrantyStatusNone)}

func (s WarrantyStatus) Valid() bool      { return slices.Contains(warrantyStatuses, string(s)) }
func (s WarrantyStatus) Values() []string { return warrantyStatuses }

// EventSeverity classifies system event log rows
type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "INFO"
	EventSeverityWarning  EventSeverity = "WARNING"
	EventSeverityError    EventSeverity = "ERROR"
	EventSeverityCritical EventSeverity = "CRITICAL"
)

var eventSeverities = []string{
	string(EventSeverityInfo),
	string(EventSeverityWarning),
	string(EventSeverityError),
	string(EventSeverityCritical),
}

func (s EventSeverity) Valid() bool      { return slices.Contains(eventSeverities, string(s)) }
func (s EventSeverity) Values() []string { return eventSeverities }

// Event types written by the API
const (
	EventTypeDeviceRegistered = "DEVICE_REGISTERED"
	EventTypeTicketCreated    = "TICKET_CREATED"
	EventTypeNotificationSent = "NOTIFICATION_SENT"
	EventTypeRollupCompleted  = "ANALYTICS_ROLLUP"
)
