package email

import (
	"html/template"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

type labels struct {
	Vehicle           string
	Condition         string
	Dealerships       string
	City              string
	PrivacyLevel      string
	Name              string
	Email             string
	Phone             string
	Preference        string
	Contacted         string
	PrivacyPreference string
	Powertrain        string
	Drivetrain        string
	Options           string
	Color             string
	Payment           string
	TermBudget        string
	TradeIn           string
	TradeInDetails    string
}

// wording is the static text of the email in one language. Fields typed
// template.HTML carry trusted inline markup.
type wording struct {
	Lang                string
	Title               string
	Heading             string
	Tagline             string
	Greeting            string
	Intro               template.HTML
	RequirementsHeading string
	ExtendedHeading     string
	ContactHeading      string
	UrgentHeading       string
	Urgent              template.HTML
	NeedsHeading        string
	Needs               []template.HTML
	NextHeading         string
	Next                template.HTML
	Thanks              string
	Regards             string
	Signature           string
	SignatureLines      []string
	Footer              string
	DealershipsUnit     string
	Labels              labels
}

var wordings = map[profile.Language]wording{
	profile.French: {
		Lang:                "fr",
		Title:               "Demande de soumission véhicule",
		Heading:             "🚗 DEMANDE URGENTE DE SOUMISSION",
		Tagline:             "Client prêt à acheter dans les 48 heures",
		Greeting:            "Cher directeur des ventes,",
		Intro:               "Je suis <strong>Sam, Courtier Auto IA</strong>, représentant un acheteur qualifié qui magasine activement pour un véhicule et prêt à prendre une décision d'achat dans les prochaines <strong>48 heures</strong>.",
		RequirementsHeading: "📋 EXIGENCES DU CLIENT",
		ExtendedHeading:     "🔧 PRÉFÉRENCES DÉTAILLÉES",
		ContactHeading:      "📞 COORDONNÉES DU CLIENT",
		UrgentHeading:       "⚡ DEMANDE URGENTE",
		Urgent:              "Ce client compare les offres de plusieurs concessionnaires et prendra une décision dans les <strong>48 heures</strong>. Veuillez fournir votre prix le plus compétitif pour sécuriser cette vente.",
		NeedsHeading:        "💰 CE DONT NOUS AVONS BESOIN:",
		Needs: []template.HTML{
			"<strong>Meilleur prix tout inclus</strong> (taxes, frais, livraison inclus)",
			"<strong>Évaluation de reprise</strong> pour leur véhicule actuel",
			"<strong>Conditions de financement</strong> disponibles",
			"<strong>Confirmation de disponibilité</strong> immédiate",
			"<strong>Promotions ou incitatifs</strong> actuels",
		},
		NextHeading:     "📞 PROCHAINES ÉTAPES",
		Next:            "Veuillez répondre avec votre meilleure offre dans les <strong>24 heures</strong>. Je présenterai toutes les offres compétitives à mon client et faciliterai la décision finale.",
		Thanks:          "Merci pour votre attention rapide à cette demande.",
		Regards:         "Meilleures salutations,",
		Signature:       "Sam, Courtier Auto IA",
		SignatureLines:  []string{"📧 Système automatisé d'approvisionnement de véhicules", "🤖 Propulsé par la technologie IA"},
		Footer:          "Ceci est un message automatisé généré par le système Sam Courtier Auto IA",
		DealershipsUnit: "concessionnaires",
		Labels: labels{
			Vehicle:           "Véhicule",
			Condition:         "État",
			Dealerships:       "Concessionnaires à contacter",
			City:              "Ville",
			PrivacyLevel:      "Niveau de confidentialité",
			Name:              "Nom du client",
			Email:             "Courriel",
			Phone:             "Téléphone",
			Preference:        "Méthode de contact préférée",
			Contacted:         "Nombre de concessionnaires contactés",
			PrivacyPreference: "Préférence de confidentialité",
			Powertrain:        "Groupe motopropulseur",
			Drivetrain:        "Transmission",
			Options:           "Options indispensables",
			Color:             "Couleurs préférées",
			Payment:           "Plan de paiement",
			TermBudget:        "Durée et budget mensuel",
			TradeIn:           "Véhicule à échanger",
			TradeInDetails:    "Détails du véhicule à échanger",
		},
	},
	profile.English: {
		Lang:                "en",
		Title:               "Vehicle Quote Request",
		Heading:             "🚗 URGENT VEHICLE QUOTE REQUEST",
		Tagline:             "Client Ready to Purchase Within 48 Hours",
		Greeting:            "Dear Sales Manager,",
		Intro:               "I am <strong>Sam, AI Auto Broker</strong>, representing a qualified buyer who is actively shopping for a vehicle and ready to make a purchase decision within the next <strong>48 hours</strong>.",
		RequirementsHeading: "📋 CLIENT REQUIREMENTS",
		ExtendedHeading:     "🔧 DETAILED PREFERENCES",
		ContactHeading:      "📞 CLIENT CONTACT INFORMATION",
		UrgentHeading:       "⚡ URGENT REQUEST",
		Urgent:              "This client is comparing offers from several dealerships and will decide within <strong>48 hours</strong>. Please provide your most competitive price to secure this sale.",
		NeedsHeading:        "💰 WHAT WE NEED FROM YOU:",
		Needs: []template.HTML{
			"<strong>Best all-in price</strong> (including taxes, fees, delivery)",
			"<strong>Trade-in evaluation</strong> for their current vehicle",
			"<strong>Financing terms</strong> available",
			"<strong>Immediate availability</strong> confirmation",
			"<strong>Any current promotions</strong> or incentives",
		},
		NextHeading:     "📞 NEXT STEPS",
		Next:            "Please reply with your best offer within <strong>24 hours</strong>. I will present all competitive offers to my client and facilitate the final decision.",
		Thanks:          "Thank you for your prompt attention to this request.",
		Regards:         "Best regards,",
		Signature:       "Sam, AI Auto Broker",
		SignatureLines:  []string{"📧 Automated Vehicle Procurement System", "🤖 Powered by AI Technology"},
		Footer:          "This is an automated message generated by Sam AI Auto Broker system",
		DealershipsUnit: "dealerships",
		Labels: labels{
			Vehicle:           "Vehicle",
			Condition:         "Condition",
			Dealerships:       "Dealerships to Contact",
			City:              "City",
			PrivacyLevel:      "Privacy Level",
			Name:              "Client Name",
			Email:             "Email",
			Phone:             "Phone",
			Preference:        "Preferred Contact Method",
			Contacted:         "Number of Dealers Contacted",
			PrivacyPreference: "Privacy Preference",
			Powertrain:        "Powertrain",
			Drivetrain:        "Drivetrain",
			Options:           "Essential Options",
			Color:             "Preferred Colors",
			Payment:           "Payment Plan",
			TermBudget:        "Term and Monthly Budget",
			TradeIn:           "Trade-in Vehicle",
			TradeInDetails:    "Trade-in Details",
		},
	},
}

const bodySource = `{{define "table"}}<table style="width: 100%; border-collapse: collapse;">
{{- range .}}
                <tr>
                    <td style="padding: 8px 0; border-bottom: 1px solid #eee; font-weight: bold; width: 40%;">{{.Label}}:</td>
                    <td style="padding: 8px 0; border-bottom: 1px solid #eee;">{{.Value}}</td>
                </tr>
{{- end}}
            </table>{{end -}}
<!DOCTYPE html>
<html lang="{{.Text.Lang}}">
<head>
    <meta charset="UTF-8">
    <title>{{.Text.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px 10px 0 0; text-align: center;">
        <h1 style="margin: 0; font-size: 24px;">{{.Text.Heading}}</h1>
        <p style="margin: 10px 0 0 0; font-size: 16px;">{{.Text.Tagline}}</p>
    </div>

    <div style="background: #f8f9fa; padding: 20px; border: 1px solid #e9ecef;">
        <p style="font-size: 16px; margin-bottom: 20px;"><strong>{{.Text.Greeting}}</strong></p>

        <p>{{.Text.Intro}}</p>

        <div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #007bff;">
            <h3 style="color: #007bff; margin-top: 0;">{{.Text.RequirementsHeading}}</h3>
            {{template "table" .Requirements}}
        </div>
{{- if .Extended}}

        <div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #6f42c1;">
            <h3 style="color: #6f42c1; margin-top: 0;">{{.Text.ExtendedHeading}}</h3>
            {{template "table" .Extended}}
        </div>
{{- end}}

        <div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #007bff;">
            <h3 style="color: #007bff; margin-top: 0;">{{.Text.ContactHeading}}</h3>
            {{template "table" .Contact}}
        </div>

        <div style="background: #fff3cd; border: 1px solid #ffeaa7; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #856404; margin-top: 0;">{{.Text.UrgentHeading}}</h3>
            <p style="margin: 0; color: #856404;">{{.Text.Urgent}}</p>
        </div>

        <h3 style="color: #28a745;">{{.Text.NeedsHeading}}</h3>
        <ul style="background: white; padding: 20px; border-radius: 8px; border-left: 4px solid #28a745;">
{{- range .Text.Needs}}
            <li>{{.}}</li>
{{- end}}
        </ul>

        <div style="background: #e7f3ff; border: 1px solid #b3d9ff; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #0066cc; margin-top: 0;">{{.Text.NextHeading}}</h3>
            <p style="margin: 0; color: #0066cc;">{{.Text.Next}}</p>
        </div>

        <p>{{.Text.Thanks}}</p>

        <p><strong>{{.Text.Regards}}</strong><br>
        <strong>{{.Text.Signature}}</strong>
{{- range .Text.SignatureLines}}<br>
        {{.}}
{{- end}}</p>
    </div>

    <div style="background: #6c757d; color: white; padding: 15px; border-radius: 0 0 10px 10px; text-align: center; font-size: 12px;">
        <p style="margin: 0;">{{.Text.Footer}}</p>
    </div>
</body>
</html>
`

var bodyTemplate = template.Must(template.New("dealer-email").Parse(bodySource))
