package handler

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&signUpRequest{EmailAddress: "not-an-email", PhoneNumber: strings.Repeat("1", 40)})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email_address must be a valid email") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "phone_number must be at most 32 characters") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestValidator_EmptyFieldsPass(t *testing.T) {
	if err := NewValidator().Validate(&signUpRequest{}); err != nil {
		t.Fatalf("empty fields are checked by the service, got %v", err)
	}
}

func TestValidator_PasswordLimitCountsBytes(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&updatePasswordRequest{Password: strings.Repeat("p", 72)}); err != nil {
		t.Fatalf("72 bytes must pass, got %v", err)
	}

	err := v.Validate(&updatePasswordRequest{Password: strings.Repeat("é", 37)})
	if err == nil || !strings.Contains(err.Error(), "password must be at most 72 bytes") {
		t.Fatalf("expected byte limit error, got %v", err)
	}

	var fe *fieldErrors
	if !errors.As(v.Validate(&signUpRequest{EmailAddress: "x", Password: strings.Repeat("p", 73)}), &fe) {
		t.Fatalf("expected *fieldErrors")
	}
	if len(fe.fields) != 2 || fe.fields[0] != "email_address" || fe.fields[1] != "password" {
		t.Fatalf("unexpected fields: %v", fe.fields)
	}
}
