package extractor

import (
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

// Normalize applies the final extraction pass to a profile assembled some
// other way, such as a submitted form.
func Normalize(p *profile.VehicleProfile, lang profile.Language) {
	normalize(p, lang)
}

// normalize is the final pass over the merged profile. Unlike the strategies
// it may rewrite values that are already set.
func normalize(p *profile.VehicleProfile, lang profile.Language) {
	for _, f := range p.Fields() {
		v := strings.TrimSpace(p.Get(f))
		if profile.IsPlaceholder(v) {
			p.Delete(f)
			continue
		}
		p.Set(f, v)
	}

	if v := p.Get(profile.Condition); v != "" {
		p.Set(profile.Condition, profile.ExpandCondition(v, lang))
	}
	if v := p.Get(profile.TradeIn); v != "" {
		p.Set(profile.TradeIn, profile.ExpandYesNo(v, lang))
	}

	// The assistant sometimes records the address itself as the preferred
	// contact method. A bare phone number says nothing about the preference.
	if pref := p.Get(profile.ContactPreference); pref != "" {
		email, phone := findEmail(pref), findPhone(pref)
		if phone != "" {
			p.Fill(profile.Phone, phone)
		}
		switch {
		case email != "":
			p.Fill(profile.Email, email)
			p.Set(profile.ContactPreference, profile.EmailPreference(lang))
		case phone != "":
			p.Delete(profile.ContactPreference)
		}
	}

	revalidateContact(p)

	// Only an email address implies a preference.
	if !p.Has(profile.ContactPreference) && isEmail(p.Get(profile.Email)) {
		p.Set(profile.ContactPreference, profile.EmailPreference(lang))
	}
}

// revalidateContact re-extracts email and phone from their own fields so a
// combined "email et téléphone" value ends up split, and a value stored in
// the wrong field moves to the right one. Text matching neither pattern is
// kept as written.
func revalidateContact(p *profile.VehicleProfile) {
	rawEmail, rawPhone := p.Get(profile.Email), p.Get(profile.Phone)

	email := findEmail(rawEmail)
	if email == "" {
		email = findEmail(rawPhone)
	}
	phone := findPhone(rawPhone)
	if phone == "" {
		phone = findPhone(rawEmail)
	}

	switch {
	case email != "":
		p.Set(profile.Email, email)
	case rawEmail != "" && findPhone(rawEmail) != "":
		p.Delete(profile.Email)
	}
	switch {
	case phone != "":
		p.Set(profile.Phone, phone)
	case rawPhone != "" && findEmail(rawPhone) != "":
		p.Delete(profile.Phone)
	}
}
