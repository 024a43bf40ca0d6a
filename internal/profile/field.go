package profile

import "strings"

// Field identifies one piece of buyer information.
type Field string

const (
	Brand             Field = "brand"
	Condition         Field = "condition"
	Model             Field = "model"
	Trim              Field = "trim"
	DealershipCount   Field = "dealershipCount"
	ContactPreference Field = "contactPreference"
	Name              Field = "name"
	Email             Field = "email"
	Phone             Field = "phone"
	City              Field = "city"
	PrivacyChoice     Field = "privacyChoice"

	// Extended flow.
	Powertrain     Field = "powertrain"
	Drivetrain     Field = "drivetrain"
	Options        Field = "options"
	Color          Field = "color"
	PaymentPlan    Field = "paymentPlan"
	TermBudget     Field = "termBudget"
	TradeIn        Field = "tradeIn"
	TradeInDetails Field = "tradeInDetails"

	// ContactInfo is the combined "email and phone" question slot. It is never
	// stored on a profile; answers to it are split into Email and Phone.
	ContactInfo Field = "contactInfo"
)

// storable lists every field a VehicleProfile can hold, in display order.
var storable = []Field{
	Brand, Condition, Model, Trim,
	Powertrain, Drivetrain, Options, Color, PaymentPlan, TermBudget, TradeIn, TradeInDetails,
	DealershipCount, ContactPreference, Name, Email, Phone, City, PrivacyChoice,
}

var extended = map[Field]bool{
	Powertrain: true, Drivetrain: true, Options: true, Color: true,
	PaymentPlan: true, TermBudget: true, TradeIn: true, TradeInDetails: true,
}

// AllFields returns the storable fields in display order.
func AllFields() []Field {
	out := make([]Field, len(storable))
	copy(out, storable)
	return out
}

// IsExtended reports whether f belongs to the extended flow only.
func (f Field) IsExtended() bool {
	return extended[f]
}

// Storable reports whether f can be set on a VehicleProfile.
func (f Field) Storable() bool {
	for _, s := range storable {
		if s == f {
			return true
		}
	}
	return false
}

// Language is one of the two supported conversation languages.
type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

// ParseLanguage maps a tag to a Language. Anything that isn't English is
// treated as French, the primary market.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "en-ca", "en-us", "english":
		return English
	default:
		return French
	}
}

// Other returns the opposite language.
func (l Language) Other() Language {
	if l == English {
		return French
	}
	return English
}
