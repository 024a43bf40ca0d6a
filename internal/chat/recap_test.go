package chat

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

func TestMatchBrand(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Toyota", "Toyota", true},
		{"je cherche une HONDA civic", "Honda", true},
		{"Mercedes", "Mercedes-Benz", true},
		{"bmw x3", "BMW", true},
		{"programme", "", false},
		{"pas encore décidé", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := MatchBrand(tt.text)
			if got != tt.want || ok != tt.ok {
				t.Errorf("MatchBrand(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRecap(t *testing.T) {
	p := profile.New()
	p.Set(profile.Brand, "Kia")
	p.Set(profile.Email, "a@b.co")
	p.Set(profile.Phone, "514-555-0000")

	got := Recap(p, profile.StandardSequence, profile.French, 2)

	if !strings.HasPrefix(got, "📋 **RÉCAPITULATIF** (Question 2/10 complétées)\n") {
		t.Errorf("heading = %q", strings.SplitN(got, "\n", 2)[0])
	}
	want := []string{
		"✅ " + profile.Label(profile.Brand, profile.French) + " : Kia",
		"✅ " + profile.Label(profile.Model, profile.French) + " : ---",
		"✅ " + profile.Label(profile.ContactInfo, profile.French) + " : a@b.co, 514-555-0000",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("recap missing %q", w)
		}
	}
	if n := strings.Count(got, "✅"); n != 10 {
		t.Errorf("expected 10 recap lines, got %d", n)
	}
}
