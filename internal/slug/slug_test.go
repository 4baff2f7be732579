package slug

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Trimmed   Spaces  ", "trimmed-spaces"},
		{"Satılık Daire: Merkezde 3+1!", "satilik-daire-merkezde-31"},
		{"Çağdaş Müstakil Ev", "cagdas-mustakil-ev"},
		{"snake_case_title", "snake-case-title"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
		{"UPPER", "upper"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize("Mortgage Rates in 2025, Explained")
	if twice := Normalize(once); twice != once {
		t.Fatalf("second pass changed slug: %q -> %q", once, twice)
	}
}

func TestEnsureUnique(t *testing.T) {
	existing := map[string]bool{
		"market-update":   true,
		"market-update-1": true,
	}
	taken := func(s string) (bool, error) { return existing[s], nil }

	got, err := EnsureUnique("market-update", taken)
	if err != nil {
		t.Fatalf("ensure unique: %v", err)
	}
	if got != "market-update-2" {
		t.Fatalf("got %q, want market-update-2", got)
	}

	free, err := EnsureUnique("fresh-title", taken)
	if err != nil {
		t.Fatalf("ensure unique: %v", err)
	}
	if free != "fresh-title" {
		t.Fatalf("got %q, want fresh-title", free)
	}
}

func TestEnsureUniquePropagatesError(t *testing.T) {
	boom := errors.New("db down")
	_, err := EnsureUnique("any", func(string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
