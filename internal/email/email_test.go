package email

import (
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

func sampleProfile() profile.VehicleProfile {
	p := profile.New()
	p.Set(profile.Brand, "Toyota")
	p.Set(profile.Condition, "Neuf")
	p.Set(profile.Model, "Camry")
	p.Set(profile.Trim, "XLE")
	p.Set(profile.DealershipCount, "5")
	p.Set(profile.ContactPreference, "Courriel")
	p.Set(profile.Name, "Jean Dupont")
	p.Set(profile.Email, "jean@x.com")
	p.Set(profile.Phone, "514-123-4567")
	p.Set(profile.City, "Montréal")
	p.Set(profile.PrivacyChoice, "A) Partager")
	return p
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name string
		p    profile.VehicleProfile
		lang profile.Language
		want string
	}{
		{"french", sampleProfile(), profile.French, "Demande urgente de soumission véhicule - Toyota Camry 2026 - Client prêt à acheter"},
		{"english", sampleProfile(), profile.English, "Urgent Vehicle Quote Request - Toyota Camry 2026 - Client Ready to Purchase"},
		{"french no brand", profile.New(), profile.French, "Demande urgente de soumission véhicule - Véhicule 2026 - Client prêt à acheter"},
		{"english no brand", profile.New(), profile.English, "Urgent Vehicle Quote Request - Vehicle 2026 - Client Ready to Purchase"},
		{"unknown language falls back to french", profile.New(), profile.Language("de"), "Demande urgente de soumission véhicule - Véhicule 2026 - Client prêt à acheter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.p, tt.lang, 2026); got != tt.want {
				t.Errorf("Subject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_Deterministic(t *testing.T) {
	for _, lang := range []profile.Language{profile.French, profile.English} {
		a := Compose(sampleProfile(), lang, 2026)
		b := Compose(sampleProfile(), lang, 2026)
		if a != b {
			t.Errorf("%s: repeated renders differ", lang)
		}
	}
}

func TestCompose_French(t *testing.T) {
	doc := Compose(sampleProfile(), profile.French, 2026)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="fr">`,
		"2026 Toyota Camry XLE",
		"Montréal",
		"jean@x.com",
		"514-123-4567",
		"5 concessionnaires",
		"Partager mes infos avec les concessionnaires gagnants seulement",
		"Sam, Courtier Auto IA",
		"EXIGENCES DU CLIENT",
	} {
		if !strings.Contains(doc.HTMLBody, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(doc.HTMLBody, "PRÉFÉRENCES DÉTAILLÉES") {
		t.Error("extended section rendered for a standard profile")
	}
	if strings.Contains(doc.HTMLBody, "Non spécifié") {
		t.Error("complete profile should have no fallback text")
	}
}

func TestCompose_EnglishTranslatesEnumerations(t *testing.T) {
	doc := Compose(sampleProfile(), profile.English, 2026)

	for _, want := range []string{
		`<html lang="en">`,
		"<td style=\"padding: 8px 0; border-bottom: 1px solid #eee;\">New</td>",
		"<td style=\"padding: 8px 0; border-bottom: 1px solid #eee;\">Email</td>",
		"Share my info with winning dealerships only",
		"Sam, AI Auto Broker",
		"5 dealerships",
	} {
		if !strings.Contains(doc.HTMLBody, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestCompose_EmptyProfileRendersFallbacks(t *testing.T) {
	tests := []struct {
		lang      profile.Language
		fallback  string
		condition string
	}{
		{profile.French, "Non spécifié", "Neuf"},
		{profile.English, "Not specified", "New"},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			doc := Compose(profile.New(), tt.lang, 2026)
			if n := strings.Count(doc.HTMLBody, tt.fallback); n < 8 {
				t.Errorf("expected fallback in every empty cell, found %d", n)
			}
			if !strings.Contains(doc.HTMLBody, ">"+tt.condition+"</td>") {
				t.Errorf("expected default condition %q", tt.condition)
			}
		})
	}
}

func TestCompose_EscapesUserText(t *testing.T) {
	p := sampleProfile()
	p.Set(profile.Name, `<script>alert("x")</script>`)

	doc := Compose(p, profile.French, 2026)
	if strings.Contains(doc.HTMLBody, "<script>") {
		t.Fatal("user text was not escaped")
	}
	if !strings.Contains(doc.HTMLBody, "&lt;script&gt;") {
		t.Error("expected escaped name in body")
	}
}

func TestCompose_ExtendedSection(t *testing.T) {
	p := sampleProfile()
	p.Set(profile.Powertrain, "Hybrid")
	p.Set(profile.Drivetrain, "AWD")
	p.Set(profile.PaymentPlan, "Lease")
	p.Set(profile.TradeIn, "Yes")
	p.Set(profile.Color, "Bleu nuit")

	doc := Compose(p, profile.French, 2026)
	for _, want := range []string{
		"PRÉFÉRENCES DÉTAILLÉES",
		">Hybride</td>",
		">Traction intégrale</td>",
		">Location</td>",
		">Oui</td>",
		">Bleu nuit</td>",
	} {
		if !strings.Contains(doc.HTMLBody, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		field profile.Field
		in    string
		lang  profile.Language
		want  string
	}{
		{profile.Condition, "Usagé", profile.English, "Used"},
		{profile.Condition, "used", profile.French, "Usagé"},
		{profile.Condition, "peu importe", profile.French, "Neuf"},
		{profile.Condition, "", profile.English, "New"},
		{profile.Powertrain, "Électrique", profile.English, "Electric"},
		{profile.Powertrain, "Diesel", profile.English, "Diesel"},
		{profile.Drivetrain, "Automatic transmission", profile.French, "Transmission automatique"},
		{profile.PaymentPlan, "Comptant", profile.English, "Cash"},
		{profile.TradeIn, "Non", profile.English, "No"},
		{profile.ContactPreference, "Les deux", profile.English, "Both email and SMS"},
		{profile.ContactPreference, "Both email and SMS", profile.French, "Courriel et SMS"},
		{profile.ContactPreference, "", profile.French, "Non spécifié"},
	}
	for _, tt := range tests {
		if got := translate(tt.field, tt.in, tt.lang); got != tt.want {
			t.Errorf("translate(%s, %q, %s) = %q, want %q", tt.field, tt.in, tt.lang, got, tt.want)
		}
	}
}

func TestPrivacy(t *testing.T) {
	tests := []struct {
		in   string
		lang profile.Language
		want string
	}{
		{"A", profile.French, "Partager mes infos avec les concessionnaires gagnants seulement"},
		{"a) share", profile.English, "Share my info with winning dealerships only"},
		{"B) Ne pas partager", profile.French, "Ne pas partager - Sam relaie tout"},
		{"whatever", profile.English, "Do not share - Sam relays everything"},
		{"", profile.English, "Not specified"},
	}
	for _, tt := range tests {
		if got := privacy(tt.in, tt.lang).short; got != tt.want {
			t.Errorf("privacy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerator_UsesClockYear(t *testing.T) {
	g := &Generator{now: func() time.Time { return time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC) }}

	doc := g.Render(sampleProfile(), profile.English)
	if !strings.Contains(doc.Subject, "Toyota Camry 2031") {
		t.Errorf("subject = %q", doc.Subject)
	}
	if !strings.Contains(doc.HTMLBody, "2031 Toyota Camry XLE") {
		t.Error("body missing model year")
	}
}
