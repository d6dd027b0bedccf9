package gateway

import (
	"errors"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"eleven digit mobile", "11987654321", "5511987654321@s.whatsapp.net"},
		{"ten digit landline", "1132654321", "551132654321@s.whatsapp.net"},
		{"formatted input", "(11) 98765-4321", "5511987654321@s.whatsapp.net"},
		{"already has country code", "5511987654321", "5511987654321@s.whatsapp.net"},
		{"twelve digits with country code", "551132654321", "551132654321@s.whatsapp.net"},
		{"international prefix notation", "+55 11 98765-4321", "5511987654321@s.whatsapp.net"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.phone)
			if err != nil {
				t.Fatalf("NormalizeAddress(%q) returned error: %v", tt.phone, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestNormalizeAddressRejections(t *testing.T) {
	tests := []struct {
		name  string
		phone string
	}{
		{"empty", ""},
		{"no digits", "abc-def"},
		{"too short", "987654"},
		{"nine digits", "119876543"},
		{"too long", "55119876543210"},
		{"thirteen digits wrong country code", "4411987654321"},
		{"twelve digits wrong country code", "441132654321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.phone)
			if !errors.Is(err, ErrUnroutablePhone) {
				t.Fatalf("NormalizeAddress(%q) = (%q, %v), want ErrUnroutablePhone", tt.phone, got, err)
			}
		})
	}
}

func TestNormalizeAddressDeterministic(t *testing.T) {
	first, err := NormalizeAddress("11 9 8765 4321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NormalizeAddress("11 9 8765 4321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("normalization is not deterministic: %q vs %q", first, second)
	}
}
