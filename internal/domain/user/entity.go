package user

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access
	RoleManager  Role = "manager"  // Sees and manages users in scope
	RoleEmployee Role = "employee" // Own records only
)

// ParseRole maps a case-insensitive role string to a Role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) String() string { return string(r) }

// Identity is the verified caller attached to a request by the auth middleware.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type User struct {
	ID            string
	Firstname     string
	Lastname      string
	Email         string
	Phone         *string
	PasswordHash  string
	Role          Role
	LatenessCount int
	LatenessMonth *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const MonthKeyLayout = "2006-01"

// MonthKey returns the YYYY-MM key of t in loc.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthKeyLayout)
}

// NextLatenessCounter applies one clock-out to the monthly lateness counter.
// The counter restarts from zero whenever monthKey differs from the stored month.
// The SQL in the user repository implements the same rule atomically.
func NextLatenessCounter(storedMonth *string, count int, monthKey string, late bool) (int, string) {
	if storedMonth == nil || *storedMonth != monthKey {
		count = 0
	}
	if late {
		count++
	}
	return count, monthKey
}
