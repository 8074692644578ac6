package money

import "testing"

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"19.99", 19.99, true},
		{"19,99", 19.99, true},
		{"$19.99", 19.99, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"1 234,56", 1234.56, true}, // non-breaking space group separator
		{"2.999", 2999, true},       // European thousands, no decimals
		{"2,999", 2999, true},
		{"12.345.678,90", 12345678.90, true},
		{"PLN 49,90", 49.90, true},
		{"€ 5", 5, true},
		{"1,2", 1.2, true},
		{"-5,00", -5, true},
		{"0", 0, true},
		{"", 0, false},
		{"free", 0, false},
		{"N/A", 0, false},
	}

	for _, tt := range tests {
		got, ok := NormalizePrice(tt.in)
		if ok != tt.ok {
			t.Errorf("NormalizePrice(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("NormalizePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToCentsExactness(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{19.99, 1999},
		{0.1, 10},
		{0.29, 29},
		{1234.56, 123456},
		{0, 0},
		// 9.995 has no exact binary representation; it is stored just
		// below the half-cent boundary and rounds down.
		{9.995, 999},
	}

	for _, tt := range tests {
		if got := ToCents(tt.in); got != tt.want {
			t.Errorf("ToCents(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	// Summing in cents must not drift the way float addition does.
	var cents int64
	for i := 0; i < 10; i++ {
		cents += ToCents(0.1)
	}
	if cents != 100 {
		t.Errorf("10 × ToCents(0.1) = %d, want 100", cents)
	}
	if got := FromCents(cents); got != 1.0 {
		t.Errorf("FromCents(%d) = %v, want 1.0", cents, got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19.99, "19.99"},
		{5, "5.00"},
		{1234.5, "1234.50"},
		{0.1 + 0.2, "0.30"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineTotalCents(t *testing.T) {
	if got := LineTotalCents(19.99, 3); got != 5997 {
		t.Errorf("LineTotalCents(19.99, 3) = %d, want 5997", got)
	}
	// Quantity floors at one.
	if got := LineTotalCents(10, 0); got != 1000 {
		t.Errorf("LineTotalCents(10, 0) = %d, want 1000", got)
	}
}
