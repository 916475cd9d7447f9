package utils

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "short", true},
		{"minimum length", "12345678", false},
		{"typical", "correct horse battery", false},
		{"too long", strings.Repeat("a", 129), true},
		{"maximum length", strings.Repeat("a", 128), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidatePassword(%d chars) err = %v, wantErr %v", len(tc.password), err, tc.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("my-password-123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "my-password-123" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "my-password-123") {
		t.Error("CheckPassword rejected correct password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("CheckPassword accepted wrong password")
	}
}
