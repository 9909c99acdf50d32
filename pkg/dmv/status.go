// Package dmv holds the typed results produced by provider automation.
// These records decouple the fragile HTML/prose parsing layer from display
// and storage: everything here is an immutable value created once per
// operation and discarded after use.
package dmv

import "time"

// StatusType classifies a registration's standing.
type StatusType string

const (
	StatusCurrent      StatusType = "current"
	StatusExpiringSoon StatusType = "expiring_soon" // within 90 days
	StatusPending      StatusType = "pending"
	StatusExpired      StatusType = "expired"
	StatusHold         StatusType = "hold"
)

// Display returns the human-readable form.
func (s StatusType) Display() string {
	switch s {
	case StatusCurrent:
		return "Current"
	case StatusExpiringSoon:
		return "Expiring Soon"
	case StatusPending:
		return "Pending"
	case StatusExpired:
		return "Expired"
	case StatusHold:
		return "Hold"
	}
	return string(s)
}

// RegistrationStatus is the result of a status check. Only Plate, VINLast5
// and Status are guaranteed: the portal frequently answers with prose only,
// so every date and description field is optional.
type RegistrationStatus struct {
	Plate              string
	VINLast5           string
	VehicleDescription string     // e.g. "2019 Honda Accord", may be empty
	ExpirationDate     *time.Time
	Status             StatusType
	DaysUntilExpiry    *int
	HoldReason         string
	StatusMessage      string     // raw prose from the portal
	LastUpdated        *time.Time // "as of" date from the portal
}

// IsRenewable reports whether the vehicle can be renewed online.
func (r RegistrationStatus) IsRenewable() bool {
	return r.Status == StatusCurrent || r.Status == StatusExpiringSoon
}
