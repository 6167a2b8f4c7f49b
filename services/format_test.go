package services

import "testing"

func TestFormatAmount_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		symbol string
		expect string
	}{
		{"zero", 0, "$", "$0.00"},
		{"small integer", 5, "$", "$5.00"},
		{"with decimals", 42.50, "$", "$42.50"},
		{"hundreds", 999.99, "$", "$999.99"},
		{"thousands", 1234.56, "$", "$1,234.56"},
		{"millions", 1234567.89, "$", "$1,234,567.89"},
		{"negative", -1234.5, "$", "-$1,234.50"},
		{"rounds half up", 0.125, "$", "$0.13"},
		{"euro symbol", 1500, "€", "€1,500.00"},
		{"no symbol", 12, "", "12.00"},
		{"negative rounds to zero", -0.001, "$", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(tt.input, tt.symbol)
			if got != tt.expect {
				t.Errorf("FormatAmount(%v, %q) = %q, want %q", tt.input, tt.symbol, got, tt.expect)
			}
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"whole number", 10, "10"},
		{"zero", 0, "0"},
		{"decimal", 10.5, "10.5"},
		{"small decimal", 0.25, "0.25"},
		{"rounded", 1.239, "1.24"},
		{"negative", -3, "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatQuantity(tt.input)
			if got != tt.want {
				t.Errorf("FormatQuantity(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyGrouping(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"5", "5"},
		{"999", "999"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := applyGrouping(tt.input); got != tt.expect {
				t.Errorf("applyGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
