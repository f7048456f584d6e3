package services

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP status
// codes; everything else is an internal error.
var (
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrDeviceNotFound         = errors.New("device not found")
	ErrDeviceExists           = errors.New("device already exists")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrDeviceCustomerMismatch = errors.New("device does not belong to the specified customer")
)
