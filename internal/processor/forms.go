package processor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/extractor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
	"github.com/MikeSquared-Agency/autobroker/internal/webhook"
)

// FormError lists the required fields a submission is missing.
type FormError struct {
	Missing []string
}

func (e *FormError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// VehicleForm is the step-by-step consultation form.
type VehicleForm struct {
	Language    string `json:"language"`
	Brand       string `json:"brand"`
	Condition   string `json:"condition"`
	Model       string `json:"model"`
	Trim        string `json:"trim"`
	Dealerships string `json:"dealerships"`
	Contact     string `json:"contact"`
	Name        string `json:"name"`
	EmailPhone  string `json:"emailPhone"`
	City        string `json:"city"`
	Privacy     string `json:"privacy"`
}

type formEntry struct {
	label string
	field profile.Field
	value string
}

// entries pairs each form value with its history label and profile field.
func (f VehicleForm) entries() []formEntry {
	return []formEntry{
		{"Brand", profile.Brand, f.Brand},
		{"Condition", profile.Condition, f.Condition},
		{"Model", profile.Model, f.Model},
		{"Trim", profile.Trim, f.Trim},
		{"Dealerships", profile.DealershipCount, f.Dealerships},
		{"Contact", profile.ContactPreference, f.Contact},
		{"Name", profile.Name, f.Name},
		{"Email/Phone", profile.Email, f.EmailPhone},
		{"City", profile.City, f.City},
		{"Privacy", profile.PrivacyChoice, f.Privacy},
	}
}

func (f VehicleForm) validate() error {
	var missing []string
	for _, req := range []struct{ name, v string }{
		{"brand", f.Brand}, {"model", f.Model}, {"name", f.Name}, {"emailPhone", f.EmailPhone},
	} {
		if strings.TrimSpace(req.v) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return &FormError{Missing: missing}
	}
	return nil
}

// Profile converts the form into a normalised profile.
func (f VehicleForm) Profile() profile.VehicleProfile {
	lang := profile.ParseLanguage(f.Language)
	p := profile.New()
	for _, e := range f.entries() {
		p.Set(e.field, e.value)
	}
	extractor.Normalize(&p, lang)
	return p
}

// ContactForm is the general contact page.
type ContactForm struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

func (f ContactForm) validate() error {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Email) == "" && strings.TrimSpace(f.Phone) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(f.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return &FormError{Missing: missing}
	}
	return nil
}

// SubmitVehicleForm renders the dealer email for a consultation form and
// delivers it like a completed conversation.
func (p *Processor) SubmitVehicleForm(ctx context.Context, f VehicleForm) (*Result, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	lang := profile.ParseLanguage(f.Language)
	prof := f.Profile()
	doc := p.emails.Render(prof, lang)

	var history transcript.Transcript
	for _, e := range f.entries() {
		history = append(history, transcript.Turn{
			Role:    transcript.RoleUser,
			Content: fmt.Sprintf("%s: %s", e.label, e.value),
		})
	}

	now := p.now()
	payload := webhook.Payload{
		Message:            "Vehicle form submission from " + f.Name,
		Response:           fmt.Sprintf("Vehicle request: %s %s (%s)", f.Brand, f.Model, f.Condition),
		Timestamp:          now.UTC(),
		ConversationID:     "vehicle_form_" + strconv.FormatInt(now.UnixMilli(), 10),
		Email:              f.EmailPhone,
		FullHistory:        history,
		EmailDealerSubject: doc.Subject,
		EmailDealerBody:    doc.HTMLBody,
		FormType:           webhook.FormVehicleConsultation,
		VehicleData: map[string]string{
			"brand":       f.Brand, "condition": f.Condition, "model": f.Model, "trim": f.Trim,
			"dealerships": f.Dealerships, "contact": f.Contact, "name": f.Name,
			"emailPhone":  f.EmailPhone, "city": f.City, "privacy": f.Privacy,
		},
		Language: string(lang),
	}
	return p.dispatch(ctx, prof, lang, doc, payload)
}

// SubmitContactForm forwards a contact page message. No dealer email is
// rendered; the subject line carries the visitor's own subject.
func (p *Processor) SubmitContactForm(ctx context.Context, f ContactForm) (*Result, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	lang := profile.ParseLanguage(f.Language)

	prof := profile.New()
	prof.Set(profile.Name, f.Name)
	prof.Set(profile.Email, f.Email)
	prof.Set(profile.Phone, f.Phone)

	now := p.now()
	payload := webhook.Payload{
		Message:        "Contact form submission from " + f.Name,
		Response:       fmt.Sprintf("Subject: %s\nMessage: %s", f.Subject, f.Message),
		Timestamp:      now.UTC(),
		ConversationID: "contact_" + strconv.FormatInt(now.UnixMilli(), 10),
		Email:          f.Email,
		FullHistory: transcript.Transcript{
			{Role: transcript.RoleUser, Content: "Name: " + f.Name},
			{Role: transcript.RoleUser, Content: "Email: " + f.Email},
			{Role: transcript.RoleUser, Content: "Phone: " + f.Phone},
			{Role: transcript.RoleUser, Content: "Subject: " + f.Subject},
			{Role: transcript.RoleUser, Content: "Message: " + f.Message},
		},
		FormType: webhook.FormContact,
		ContactData: map[string]string{
			"name":    f.Name, "email": f.Email, "phone": f.Phone,
			"subject": f.Subject, "message": f.Message,
		},
		Language: string(lang),
	}
	return p.dispatch(ctx, prof, lang, email.Document{Subject: f.Subject}, payload)
}
