// Package email renders the dealer-facing quote request sent for every
// completed lead.
package email

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

// Document is a rendered email.
type Document struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// Generator renders documents stamped with the current year.
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Render composes the email for p using the current year.
func (g *Generator) Render(p profile.VehicleProfile, lang profile.Language) Document {
	return Compose(p, lang, g.now().Year())
}

// Compose renders the subject and HTML body for p. It is a pure function of
// its arguments.
func Compose(p profile.VehicleProfile, lang profile.Language, year int) Document {
	return Document{
		Subject:  Subject(p, lang, year),
		HTMLBody: body(p, lang, year),
	}
}

var subjectFormats = map[profile.Language]string{
	profile.French:  "Demande urgente de soumission véhicule - %s %d - Client prêt à acheter",
	profile.English: "Urgent Vehicle Quote Request - %s %d - Client Ready to Purchase",
}

var vehicleWord = map[profile.Language]string{
	profile.French:  "Véhicule",
	profile.English: "Vehicle",
}

// Subject renders the subject line.
func Subject(p profile.VehicleProfile, lang profile.Language, year int) string {
	lang = normalizeLanguage(lang)
	return fmt.Sprintf(subjectFormats[lang], vehicle(p, lang), year)
}

// vehicle is "brand model", with a generic word when the brand is unknown.
func vehicle(p profile.VehicleProfile, lang profile.Language) string {
	brand := p.Get(profile.Brand)
	if brand == "" {
		brand = vehicleWord[lang]
	}
	return strings.TrimSpace(brand + " " + p.Get(profile.Model))
}

func normalizeLanguage(lang profile.Language) profile.Language {
	if lang == profile.English {
		return profile.English
	}
	return profile.French
}

type row struct {
	Label string
	Value string
}

type view struct {
	Text         wording
	Requirements []row
	Extended     []row
	Contact      []row
}

func body(p profile.VehicleProfile, lang profile.Language, year int) string {
	lang = normalizeLanguage(lang)
	c := wordings[lang]
	priv := privacy(p.Get(profile.PrivacyChoice), lang)

	desc := strconv.Itoa(year) + " " + vehicle(p, lang)
	if trim := p.Get(profile.Trim); trim != "" {
		desc += " " + trim
	}

	v := view{
		Text: c,
		Requirements: []row{
			{c.Labels.Vehicle, desc},
			{c.Labels.Condition, translate(profile.Condition, p.Get(profile.Condition), lang)},
			{c.Labels.Dealerships, display(p.Get(profile.DealershipCount), lang)},
			{c.Labels.City, display(p.Get(profile.City), lang)},
			{c.Labels.PrivacyLevel, priv.short},
		},
		Contact: []row{
			{c.Labels.Name, display(p.Get(profile.Name), lang)},
			{c.Labels.Email, display(p.Get(profile.Email), lang)},
			{c.Labels.Phone, display(p.Get(profile.Phone), lang)},
			{c.Labels.Preference, translate(profile.ContactPreference, p.Get(profile.ContactPreference), lang)},
			{c.Labels.Contacted, contacted(p.Get(profile.DealershipCount), lang)},
			{c.Labels.PrivacyPreference, priv.long},
		},
	}

	if p.HasExtended() {
		v.Extended = []row{
			{c.Labels.Powertrain, translate(profile.Powertrain, p.Get(profile.Powertrain), lang)},
			{c.Labels.Drivetrain, translate(profile.Drivetrain, p.Get(profile.Drivetrain), lang)},
			{c.Labels.Options, display(p.Get(profile.Options), lang)},
			{c.Labels.Color, display(p.Get(profile.Color), lang)},
			{c.Labels.Payment, translate(profile.PaymentPlan, p.Get(profile.PaymentPlan), lang)},
			{c.Labels.TermBudget, display(p.Get(profile.TermBudget), lang)},
			{c.Labels.TradeIn, translate(profile.TradeIn, p.Get(profile.TradeIn), lang)},
			{c.Labels.TradeInDetails, display(p.Get(profile.TradeInDetails), lang)},
		}
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, v); err != nil {
		// The template is fixed and the view holds only strings.
		panic(fmt.Sprintf("email: render body: %v", err))
	}
	return buf.String()
}

func contacted(count string, lang profile.Language) string {
	v := display(count, lang)
	if v == fallbacks[lang] {
		return v
	}
	return v + " " + wordings[lang].DealershipsUnit
}
