package validator

import "testing"

// The v10 implementation must satisfy the package interface.
var _ Validator = (*V10Validator)(nil)

func TestV10ValidatorValidate(t *testing.T) {
	// Arrange
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type input struct {
		Name string `validate:"required"`
	}

	// Act / Assert
	if err := v.Validate(input{Name: "ok"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	err = v.Validate(input{})
	verr, ok := err.(V10ValidationError)
	if !ok {
		t.Fatalf("expected V10ValidationError, got %v", err)
	}
	if _, found := verr.Values()["name"]; !found {
		t.Fatalf("expected snake_case field key, got %v", verr.Values())
	}
}
