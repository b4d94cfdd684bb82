package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0", 0, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{".5", 50, false},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDecimalToCents(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseDecimalToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestCoerceCents(t *testing.T) {
	if got := CoerceCents("12,50"); got != 1250 {
		t.Fatalf("CoerceCents valid = %d", got)
	}
	if got := CoerceCents("not a number"); got != 0 {
		t.Fatalf("CoerceCents must map garbage to 0, got %d", got)
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 123450}).String(); got != "1234,50 kr" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Money{Cents: -101}).String(); got != "-1,01 kr" {
		t.Fatalf("String() = %q", got)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 300}
	if got := a.Add(b); got.Cents != 1300 {
		t.Fatalf("Add = %d", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 700 {
		t.Fatalf("Sub = %d", got.Cents)
	}
	if !(Money{}).IsZero() {
		t.Fatalf("zero money should be zero")
	}
}
