package core

import "testing"

func TestParseSignedDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"-12,34", -1234, true},
		{"-1.005", -101, true}, // symmetric half-up
		{"+5", 500, true},
		{"$1.50", 150, true},
		{"€1.50", 150, true},
		{"-$0.50", -50, true},
		{".5", 50, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"$", 0, false},
		{"-", 0, false},
		{"1a.23", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSignedDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyTaxAt(t *testing.T) {
	cases := []struct {
		cents int64
		bp    int64
		want  int64
	}{
		{10000, 1600, 1600}, // 100.00 at 16% -> 16.00
		{1000, 1600, 160},
		{1, 1600, 0},     // 0.16 cents rounds down
		{4, 1600, 1},     // 0.64 cents rounds up
		{3, 1600, 0},     // 0.48 cents rounds down
		{-10000, 1600, -1600},
		{-4, 1600, -1}, // symmetric with the positive case
		{10000, 0, 0},
	}
	for _, tc := range cases {
		got := (Money{Cents: tc.cents}).TaxAt(tc.bp)
		if got.Cents != tc.want {
			t.Fatalf("TaxAt(%d, %d) expected %d, got %d", tc.cents, tc.bp, tc.want, got.Cents)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		cents   int64
		decimal string
		display string
	}{
		{1234, "12.34", "$12.34"},
		{-1234, "-12.34", "-$12.34"},
		{5, "0.05", "$0.05"},
		{0, "0.00", "$0.00"},
		{-50, "-0.50", "-$0.50"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if got := m.Decimal(); got != tc.decimal {
			t.Fatalf("Decimal(%d) expected %q, got %q", tc.cents, tc.decimal, got)
		}
		if got := m.String(); got != tc.display {
			t.Fatalf("String(%d) expected %q, got %q", tc.cents, tc.display, got)
		}
	}
}

func TestMoneyAdd(t *testing.T) {
	got := Money{Cents: 150}.Add(Money{Cents: -50})
	if got.Cents != 100 {
		t.Fatalf("expected 100, got %d", got.Cents)
	}
}
