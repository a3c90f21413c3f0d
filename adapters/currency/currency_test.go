package currency

import "testing"

func TestToMinorUnits(t *testing.T) {
	c := New()
	tests := []struct {
		amount  string
		code    string
		want    int64
		wantErr bool
	}{
		{"19.99", "USD", 1999, false},
		{"19", "USD", 1900, false},
		{"$1,234.50", "USD", 123450, false},
		{"500", "JPY", 500, false},
		{"1.234", "BHD", 1234, false},
		{"-3.50", "EUR", -350, false},
		{"", "USD", 0, true},
		{"abc", "USD", 0, true},
	}
	for _, tt := range tests {
		got, err := c.ToMinorUnits(tt.amount, tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToMinorUnits(%q, %s) error = %v", tt.amount, tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToMinorUnits(%q, %s) = %d, want %d", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	c := New()
	tests := []struct {
		units int64
		code  string
		want  string
	}{
		{1999, "USD", "19.99"},
		{500, "JPY", "500"},
		{1234, "BHD", "1.234"},
		{5, "USD", "0.05"},
		{-350, "EUR", "-3.50"},
	}
	for _, tt := range tests {
		if got := c.FromMinorUnits(tt.units, tt.code); got != tt.want {
			t.Errorf("FromMinorUnits(%d, %s) = %q, want %q", tt.units, tt.code, got, tt.want)
		}
	}
}

func TestExponent_Default(t *testing.T) {
	if got := Exponent("usd"); got != 2 {
		t.Errorf("Exponent(usd) = %d, want 2", got)
	}
	if got := Exponent("XYZ"); got != 2 {
		t.Errorf("Exponent(XYZ) = %d, want 2", got)
	}
}
