package validator

import (
	"errors"
	"testing"
	"time"
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

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // v7 uppercase
		"123e4567-e89b-12d3-a456-426614174000", // v1
		"3f2504e0-4f89-41d3-9a0c-0305e82c3301", // v4
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",              // missing dashes
		"urn:uuid:3f2504e0-4f89-41d3-9a0c-0305e82c3301", // urn form
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",          // invalid hex
		"",                                              // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31", "2024-02-29"}
	invalid := []string{"2023-13-01", "2023-02-30", "2023/01/01", "", "01-01-2023"}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}

	got, _ := IsValidDate("2024-03-15")
	if !got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("IsValidDate parsed %v, want 2024-03-15 UTC", got)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"earning", "deduction"}
	if !IsInSlice("earning", slice) {
		t.Error("IsInSlice(earning) = false, want true")
	}
	if IsInSlice("bonus", slice) {
		t.Error("IsInSlice(bonus) = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	var err error = ValidationErrors{
		{Field: "code", Message: "code is required"},
		{Field: "amount", Message: "must be non-negative"},
	}

	if err.Error() != "code: code is required; amount: must be non-negative" {
		t.Errorf("Error() = %q", err.Error())
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatal("errors.As failed for ValidationErrors")
	}
	m := verrs.ToMap()
	if m["code"] != "code is required" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
