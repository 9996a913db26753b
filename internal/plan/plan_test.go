package plan

import "testing"

func TestCaps(t *testing.T) {
	if got := Caps("business"); !got.Unlimited {
		t.Fatalf("expected business to be unlimited, got %+v", got)
	}
	if got := Caps("pro"); got.Unlimited || got.DailyCap != 100 {
		t.Fatalf("expected pro cap=100, got %+v", got)
	}
	if got := Caps("free"); got.Unlimited || got.DailyCap != 5 {
		t.Fatalf("expected free cap=5, got %+v", got)
	}
	if got := Caps("enterprise"); got.DailyCap != 5 {
		t.Fatalf("expected unknown plan to resolve as free, got %+v", got)
	}
	if got := Caps(""); got.DailyCap != 5 {
		t.Fatalf("expected empty plan to resolve as free, got %+v", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"pro":      Pro,
		"PRO":      Pro,
		" Business": Business,
		"free":     Free,
		"gold":     Free,
		"":         Free,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestNormalizePaid(t *testing.T) {
	if got := NormalizePaid("business"); got != Business {
		t.Fatalf("expected business, got %q", got)
	}
	for _, in := range []string{"pro", "free", "gold", ""} {
		if got := NormalizePaid(in); got != Pro {
			t.Fatalf("NormalizePaid(%q)=%q, want pro", in, got)
		}
	}
}

func TestMonthPrice(t *testing.T) {
	if got := MonthPrice(Pro); got != 900 {
		t.Fatalf("expected pro price 900, got %d", got)
	}
	if got := MonthPrice(Business); got != 2900 {
		t.Fatalf("expected business price 2900, got %d", got)
	}
}
