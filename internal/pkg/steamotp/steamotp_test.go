package steamotp

import (
	"testing"
	"time"
)

func TestGenerateAt(t *testing.T) {
	gen := New()

	tests := []struct {
		name   string
		secret string
		unix   int64
		want   string
	}{
		{"zero key epoch", "AAAAAAAAAAAAAAAA", 0, "RYH4D"},
		{"zero key billennium", "AAAAAAAAAAAAAAAA", 1000000000, "2W3J6"},
		{"zero key recent", "AAAAAAAAAAAAAAAA", 1700000000, "THTN4"},
		{"zero key later", "AAAAAAAAAAAAAAAA", 1755555555, "XJPFR"},
		{"rfc style key first window", "aGVsbG93b3JsZHNoYXJlZHNlY3JldA==", 59, "2HC9Y"},
		{"rfc style key", "aGVsbG93b3JsZHNoYXJlZHNlY3JldA==", 1111111109, "YVTM8"},
		{"rfc style key recent", "aGVsbG93b3JsZHNoYXJlZHNlY3JldA==", 1700000000, "JDQMX"},
		// 10 chars is not valid base64, so this exercises the base32 fallback.
		{"base32 fallback", "AAAAAAAAAA", 1700000000, "THTN4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gen.GenerateAt(tc.secret, time.Unix(tc.unix, 0))
			if err != nil {
				t.Fatalf("GenerateAt() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("GenerateAt() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateAtStableWithinWindow(t *testing.T) {
	gen := New()

	first, err := gen.GenerateAt("AAAAAAAAAAAAAAAA", time.Unix(1699999980, 0))
	if err != nil {
		t.Fatalf("GenerateAt() error = %v", err)
	}
	second, err := gen.GenerateAt("AAAAAAAAAAAAAAAA", time.Unix(1700000009, 0))
	if err != nil {
		t.Fatalf("GenerateAt() error = %v", err)
	}

	if first != second {
		t.Fatalf("codes within one window differ: %q vs %q", first, second)
	}
}

func TestGenerateAtInvalidSecret(t *testing.T) {
	gen := New()

	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "!!!not-a-secret!!!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := gen.GenerateAt(tc.secret, time.Unix(1700000000, 0)); err == nil {
				t.Fatalf("GenerateAt() expected error for %q", tc.secret)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	gen := New()

	if err := gen.Validate("aGVsbG93b3JsZHNoYXJlZHNlY3JldA=="); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := gen.Validate("???"); err == nil {
		t.Fatal("Validate() expected error for malformed secret")
	}
}
