package challenge

import (
	"errors"
	"strconv"
	"testing"
)

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length = %d, want 6", len(code))
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside 100000-999999", n)
		}
	}
}

func TestGenerateCode_Randomness(t *testing.T) {
	seen := make(map[string]bool)
	dups := 0
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if seen[code] {
			dups++
		}
		seen[code] = true
	}
	// 100 draws from 900000 values collide with probability well under 1%; more than one is a broken source.
	if dups > 1 {
		t.Errorf("%d duplicate codes in 100 draws", dups)
	}
}

func TestHashCode(t *testing.T) {
	if HashCode("123456") != HashCode("123456") {
		t.Error("HashCode should be deterministic")
	}
	if HashCode("123456") == HashCode("654321") {
		t.Error("different codes should hash differently")
	}
	if got := len(HashCode("123456")); got != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", got)
	}
}

func TestValidateCodeFormat(t *testing.T) {
	testCases := []struct {
		code string
		ok   bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12a456", false},
		{"", false},
		{"12 456", false},
		{"١٢٣٤٥٦", false},
	}
	for _, tc := range testCases {
		err := ValidateCodeFormat(tc.code)
		if tc.ok && err != nil {
			t.Errorf("ValidateCodeFormat(%q) = %v, want nil", tc.code, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCodeFormat) {
			t.Errorf("ValidateCodeFormat(%q) = %v, want ErrInvalidCodeFormat", tc.code, err)
		}
	}
}
