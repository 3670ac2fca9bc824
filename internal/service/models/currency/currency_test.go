package currency

import "testing"

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole dollars", 25.00, 2500},
		{"exact cents", 19.99, 1999},
		{"exact half cent rounds up", 0.125, 13},
		{"above half cent rounds up", 10.006, 1001},
		{"below half cent rounds down", 10.004, 1000},
		{"float artifact", 0.1 + 0.2, 30},
		{"zero", 0, 0},
		{"large total", 12345.67, 1234567},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToMinorUnits(tc.amount); got != tc.want {
				t.Errorf("ToMinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	t.Run("accepts known codes case-insensitively", func(t *testing.T) {
		for _, s := range []string{"usd", "USD", "eur", "inr"} {
			if _, err := ParseCurrency(s); err != nil {
				t.Errorf("ParseCurrency(%q) returned error: %v", s, err)
			}
		}
	})

	t.Run("rejects unknown codes", func(t *testing.T) {
		if _, err := ParseCurrency("doubloons"); err != ErrInvalidCurrency {
			t.Errorf("expected ErrInvalidCurrency, got %v", err)
		}
	})
}
