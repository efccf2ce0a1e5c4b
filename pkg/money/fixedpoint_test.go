package money

import "testing"

func TestParseMilliunits(t *testing.T) {
	tests := []struct {
		in       string
		expected int64
	}{
		{"100.00", 100000},
		{"100", 100000},
		{"0.01", 10},
		{"-12.34", -12340},
		{"0.5", 500},
		{"1234.56", 1234560},
		// Excess fractional digits are truncated, never rounded.
		{"1.999", 1990},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMilliunits(tt.in)
			if err != nil {
				t.Fatalf("ParseMilliunits(%q) returned error: %v", tt.in, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMilliunits(%q) = %d, expected %d", tt.in, got, tt.expected)
			}
		})
	}
}

func TestParseMilliunitsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12.3.4", "12,34"} {
		if _, err := ParseMilliunits(in); err == nil {
			t.Errorf("ParseMilliunits(%q) expected error, got none", in)
		}
	}
}

func TestMilliunitsRoundTrip(t *testing.T) {
	// Money strings with at most two fractional digits round-trip exactly.
	for _, s := range []string{"0.00", "0.01", "1.50", "100.00", "99999.99", "-42.07"} {
		v, err := ParseMilliunits(s)
		if err != nil {
			t.Fatalf("ParseMilliunits(%q): %v", s, err)
		}
		if got := FormatMilliunits(v); got != s {
			t.Errorf("round trip %q -> %d -> %q", s, v, got)
		}
	}
}

func TestParseShareUnits(t *testing.T) {
	tests := []struct {
		in       string
		expected int64
	}{
		{"1", 10000000000},
		{"1.5", 15000000000},
		{"0.0000000001", 1},
		{"10", 100000000000},
		{"0.3", 3000000000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShareUnits(tt.in)
			if err != nil {
				t.Fatalf("ParseShareUnits(%q) returned error: %v", tt.in, err)
			}
			if got != tt.expected {
				t.Errorf("ParseShareUnits(%q) = %d, expected %d", tt.in, got, tt.expected)
			}
		})
	}
}

func TestFormatShareUnits(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{10000000000, "1"},
		{15000000000, "1.5"},
		{1, "0.0000000001"},
		{100000000000, "10"},
		{3000000000, "0.3"},
	}

	for _, tt := range tests {
		if got := FormatShareUnits(tt.in); got != tt.expected {
			t.Errorf("FormatShareUnits(%d) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestScaleRatio(t *testing.T) {
	tests := []struct {
		name            string
		total, num, den int64
		expected        int64
	}{
		{"partial sale basis", 1000, 6, 10, 600},
		{"rounds to nearest", 1000, 1, 3, 333},
		{"rounds half away", 5, 1, 2, 3},
		{"negative total", -1000, 6, 10, -600},
		{"large share units", 123456789, 60000000000, 100000000000, 74074073},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleRatio(tt.total, tt.num, tt.den); got != tt.expected {
				t.Errorf("ScaleRatio(%d, %d, %d) = %d, expected %d",
					tt.total, tt.num, tt.den, got, tt.expected)
			}
		})
	}
}
