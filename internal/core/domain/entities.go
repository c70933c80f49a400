package domain

// Role represents user role in the system
type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
)

// Reservation lifecycle statuses. A reservation only ever moves forward:
// booked -> loaded -> opened. "expired" is never written to storage; it is
// derived lazily from ExpiresAt at each access.
const (
	ReservationBooked  = "booked"
	ReservationLoaded  = "loaded"
	ReservationOpened  = "opened"
	ReservationExpired = "expired"
)

// Locker register statuses
const (
	LockerOpen     = "open"
	LockerClosed   = "closed"
	LockerOpening  = "opening"
	LockerClosing  = "closing"
	LockerReserved = "reserved"
	LockerUnknown  = "unknown"
)

// OTP purposes
const (
	PurposeLogin = "login"
)

// Audit actions
const (
	ActionOpen           = "open"
	ActionClose          = "close"
	ActionOpenByShipper  = "open_by_shipper"
	ActionOpenByReceiver = "open_by_receiver"
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
