package model

import "testing"

func TestSplitGross(t *testing.T) {
	tests := []struct {
		name    string
		gross   int64
		wantNet int64
		wantTax int64
	}{
		{"typical price", 4760, 4000, 760},
		{"zero", 0, 0, 0},
		{"one peso", 1, 1, 0},
		{"non-divisible", 999, 840, 159},
		{"large cart", 1190000, 1000000, 190000},
		{"prime amount", 10007, 8409, 1598},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, tax := SplitGross(tt.gross)
			if net != tt.wantNet {
				t.Errorf("SplitGross(%d) net = %d, want %d", tt.gross, net, tt.wantNet)
			}
			if tax != tt.wantTax {
				t.Errorf("SplitGross(%d) tax = %d, want %d", tt.gross, tax, tt.wantTax)
			}
			if net+tax != tt.gross {
				t.Errorf("SplitGross(%d): net+tax = %d, must equal gross", tt.gross, net+tax)
			}
		})
	}
}

func TestSplitGrossReconstruction(t *testing.T) {
	// The decomposition must be lossless for any amount.
	for gross := int64(0); gross < 10000; gross++ {
		net, tax := SplitGross(gross)
		if net+tax != gross {
			t.Fatalf("SplitGross(%d): net %d + tax %d != gross", gross, net, tax)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"whole pesos", "4760", 4760},
		{"decimal string", "4760.00", 4760},
		{"rounds up", "4760.50", 4761},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"negative", "-150", -150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAmount(tt.input); got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCLP(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{"small", 760, "$760"},
		{"thousands", 4760, "$4.760"},
		{"millions", 1190000, "$1.190.000"},
		{"zero", 0, "$0"},
		{"negative", -4760, "-$4.760"},
		{"exact thousand", 1000, "$1.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCLP(tt.amount); got != tt.want {
				t.Errorf("FormatCLP(%d) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
