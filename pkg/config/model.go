// Package config owns the persisted user configuration: vehicles, owner
// details and provider selection. The aggregate is treated as an immutable
// value; every mutation helper returns a new copy so callers can never
// share accidental state. Payment data is attached in memory only and is
// excluded from serialization — the OS credential store is its sole home.
package config

import (
	"regexp"
	"strings"
	"time"

	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/payment"
	"github.com/platewise/platewise/pkg/vehicle"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 2

var (
	statePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	nonDigits    = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Address is a physical mailing address.
type Address struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZIPCode string `yaml:"zip_code"`
}

// NewAddress validates and normalizes an address.
func NewAddress(street, city, state, zipCode string) (Address, error) {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	state = strings.ToUpper(strings.TrimSpace(state))

	if len(street) < 5 {
		return Address{}, invalidField("street", "street address is too short")
	}
	if len(city) < 2 {
		return Address{}, invalidField("city", "city is too short")
	}
	if !statePattern.MatchString(state) {
		return Address{}, invalidField("state", "state must be a 2-letter code")
	}
	if !zipPattern.MatchString(zipCode) {
		return Address{}, invalidField("zip_code", "ZIP must be 5 digits (optionally ZIP+4)")
	}
	return Address{Street: street, City: city, State: state, ZIPCode: zipCode}, nil
}

// Formatted returns the single-line rendering.
func (a Address) Formatted() string {
	return a.Street + ", " + a.City + ", " + a.State + " " + a.ZIPCode
}

// OwnerInfo is the vehicle owner's contact information.
type OwnerInfo struct {
	FullName string  `yaml:"full_name"`
	Phone    string  `yaml:"phone"` // digits only
	Email    string  `yaml:"email"`
	Address  Address `yaml:"address"`
}

// NewOwnerInfo validates owner details. Phone numbers are normalized to
// digits before the length check.
func NewOwnerInfo(fullName, phone, email string, address Address) (OwnerInfo, error) {
	fullName = strings.TrimSpace(fullName)
	if len(fullName) < 2 {
		return OwnerInfo{}, invalidField("full_name", "name is too short")
	}

	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) < 10 || len(digits) > 14 {
		return OwnerInfo{}, invalidField("phone", "phone must be 10-14 digits")
	}

	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return OwnerInfo{}, invalidField("email", "invalid email address")
	}

	return OwnerInfo{FullName: fullName, Phone: digits, Email: email, Address: address}, nil
}

// FormattedPhone renders a 10-digit number as (NNN) NNN-NNNN.
func (o OwnerInfo) FormattedPhone() string {
	if len(o.Phone) == 10 {
		return "(" + o.Phone[:3] + ") " + o.Phone[3:6] + "-" + o.Phone[6:]
	}
	return o.Phone
}

// MaskedEmail hides most of the local part for display.
func (o OwnerInfo) MaskedEmail() string {
	at := strings.IndexByte(o.Email, '@')
	if at < 0 {
		return o.Email
	}
	local, domain := o.Email[:at], o.Email[at+1:]
	if len(local) <= 2 {
		return local[:1] + "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}

// VehicleEntry is one vehicle in the configuration.
type VehicleEntry struct {
	Vehicle   vehicle.Identity `yaml:"vehicle"`
	Nickname  string           `yaml:"nickname,omitempty"`
	IsDefault bool             `yaml:"is_default"`
	AddedAt   time.Time        `yaml:"added_at"`
}

// Label returns the nickname when set, otherwise the plate.
func (e VehicleEntry) Label() string {
	if e.Nickname != "" {
		return e.Nickname
	}
	return e.Vehicle.Plate
}

// UserConfiguration is the versioned aggregate persisted by the Store.
// Invariants: the vehicle list is never empty, plates are unique within it,
// and exactly one entry is the default.
type UserConfiguration struct {
	Version   int            `yaml:"version"`
	CreatedAt time.Time      `yaml:"created_at"`
	UpdatedAt time.Time      `yaml:"updated_at"`
	Vehicles  []VehicleEntry `yaml:"vehicles"`
	Owner     *OwnerInfo     `yaml:"owner,omitempty"`
	State     string         `yaml:"state"`

	// Payment lives in the OS credential store and is attached at runtime.
	// The yaml tag keeps it out of the persisted document.
	Payment *payment.Info `yaml:"-"`
}

// New creates a configuration with a single default vehicle.
func New(id vehicle.Identity, nickname string, owner *OwnerInfo, state string) (UserConfiguration, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		state = "CA"
	}
	if !statePattern.MatchString(state) {
		return UserConfiguration{}, invalidField("state", "state must be a 2-letter code")
	}

	now := time.Now()
	return UserConfiguration{
		Version:   CurrentVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Vehicles: []VehicleEntry{{
			Vehicle:   id,
			Nickname:  nickname,
			IsDefault: true,
			AddedAt:   now,
		}},
		Owner: owner,
		State: state,
	}, nil
}

// Validate checks the aggregate invariants. Run after loading.
func (c UserConfiguration) Validate() error {
	if len(c.Vehicles) == 0 {
		return invalidField("vehicles", "at least one vehicle is required")
	}
	defaults := 0
	seen := make(map[string]bool, len(c.Vehicles))
	for _, entry := range c.Vehicles {
		if entry.IsDefault {
			defaults++
		}
		if seen[entry.Vehicle.Plate] {
			return invalidField("vehicles", "duplicate plate "+entry.Vehicle.Plate)
		}
		seen[entry.Vehicle.Plate] = true
	}
	if defaults != 1 {
		return invalidField("vehicles", "exactly one vehicle must be the default")
	}
	if !statePattern.MatchString(c.State) {
		return invalidField("state", "state must be a 2-letter code")
	}
	return nil
}

// AddVehicle returns a new configuration with the vehicle appended.
// Fails when the plate already exists.
func (c UserConfiguration) AddVehicle(id vehicle.Identity, nickname string) (UserConfiguration, error) {
	for _, entry := range c.Vehicles {
		if entry.Vehicle.Plate == id.Plate {
			return UserConfiguration{}, invalidField("vehicles", "plate "+id.Plate+" is already registered")
		}
	}

	next := c.clone()
	next.Vehicles = append(next.Vehicles, VehicleEntry{
		Vehicle:   id,
		Nickname:  nickname,
		IsDefault: len(next.Vehicles) == 0,
		AddedAt:   time.Now(),
	})
	next.UpdatedAt = time.Now()
	return next, nil
}

// RemoveVehicle returns a new configuration without the given plate.
// Removing the default promotes the first remaining entry; removing the
// last vehicle is rejected.
func (c UserConfiguration) RemoveVehicle(plate string) (UserConfiguration, error) {
	plate = vehicle.NormalizePlate(plate)

	idx := -1
	for i, entry := range c.Vehicles {
		if entry.Vehicle.Plate == plate {
			idx = i
			break
		}
	}
	if idx < 0 {
		return UserConfiguration{}, invalidField("vehicles", "no vehicle with plate "+plate)
	}
	if len(c.Vehicles) == 1 {
		return UserConfiguration{}, invalidField("vehicles", "cannot remove the last vehicle")
	}

	removedDefault := c.Vehicles[idx].IsDefault

	next := c.clone()
	next.Vehicles = append(next.Vehicles[:idx], next.Vehicles[idx+1:]...)
	if removedDefault {
		next.Vehicles[0].IsDefault = true
	}
	next.UpdatedAt = time.Now()
	return next, nil
}

// SetDefault returns a new configuration with the given plate as default.
func (c UserConfiguration) SetDefault(plate string) (UserConfiguration, error) {
	plate = vehicle.NormalizePlate(plate)

	found := false
	next := c.clone()
	for i := range next.Vehicles {
		isTarget := next.Vehicles[i].Vehicle.Plate == plate
		next.Vehicles[i].IsDefault = isTarget
		if isTarget {
			found = true
		}
	}
	if !found {
		return UserConfiguration{}, invalidField("vehicles", "no vehicle with plate "+plate)
	}
	next.UpdatedAt = time.Now()
	return next, nil
}

// WithPayment returns a new configuration with payment attached in memory.
func (c UserConfiguration) WithPayment(p payment.Info) UserConfiguration {
	next := c.clone()
	next.Payment = &p
	return next
}

// HasPayment reports whether payment info is attached.
func (c UserConfiguration) HasPayment() bool {
	return c.Payment != nil
}

// DefaultVehicle returns the default entry.
func (c UserConfiguration) DefaultVehicle() (VehicleEntry, bool) {
	for _, entry := range c.Vehicles {
		if entry.IsDefault {
			return entry, true
		}
	}
	return VehicleEntry{}, false
}

// FindVehicle looks an entry up by plate, normalizing the input first.
func (c UserConfiguration) FindVehicle(plate string) (VehicleEntry, bool) {
	plate = vehicle.NormalizePlate(plate)
	for _, entry := range c.Vehicles {
		if entry.Vehicle.Plate == plate {
			return entry, true
		}
	}
	return VehicleEntry{}, false
}

// clone deep-copies the aggregate so mutation helpers never alias slices.
func (c UserConfiguration) clone() UserConfiguration {
	next := c
	next.Vehicles = make([]VehicleEntry, len(c.Vehicles))
	copy(next.Vehicles, c.Vehicles)
	if c.Owner != nil {
		owner := *c.Owner
		next.Owner = &owner
	}
	if c.Payment != nil {
		p := *c.Payment
		next.Payment = &p
	}
	return next
}

func invalidField(field, reason string) *errors.Error {
	return errors.New(errors.ErrCodeConfigInvalid, "invalid configuration: "+field).
		WithContext("field", field).
		WithUserMessage(reason)
}
