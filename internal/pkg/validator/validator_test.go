package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"0612345678", "+33612345678", "06-12-34-56-78", "06 12 34 56 78"}
	invalid := []string{"12345", "abc0812345678", "0812345678a", "+1234567890123456"}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	h, m, ok := IsValidTimeOfDay("09:05")
	assert.True(t, ok)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, s := range []string{"9h", "24:00", "12:60", ""} {
		_, _, ok := IsValidTimeOfDay(s)
		assert.False(t, ok, s)
	}
}

func TestParseRangeBound(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	start, ok := ParseRangeBound("2026-01-05", loc, false)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, loc), start)

	end, ok := ParseRangeBound("2026-01-05", loc, true)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 5, 23, 59, 59, 999999999, loc), end)

	ts, ok := ParseRangeBound("2026-01-05T09:07:00Z", loc, true)
	assert.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2026, 1, 5, 9, 7, 0, 0, time.UTC)))

	_, ok = ParseRangeBound("yesterday", loc, false)
	assert.False(t, ok)
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	assert.Equal(t, "email: invalid; phone: required", errs.Error())
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	assert.Equal(t, map[string]string{"email": "invalid", "phone": "required"}, errs.ToMap())
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("clockOut", "invalid timestamp")
	err := errs.Err()
	assert.Error(t, err)
	assert.Equal(t, "clockOut: invalid timestamp", err.Error())
}
