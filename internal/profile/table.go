package profile

import "strings"

// Wording is the language-specific description of a field: how the assistant
// asks for it, how questions about it can be recognised and which labels
// identify it in a recap block.
type Wording struct {
	// Label is the human-facing name used in recaps and emails.
	Label string
	// Prompt is the canonical question.
	Prompt string
	// Keywords recognise a question about the field. Each distinct match
	// scores one point.
	Keywords []Keyword
	// Require, when set, gates the match: at least one must be present.
	Require []Keyword
	// Labels are accepted recap label synonyms, compared after Fold.
	Labels []string
}

// table is the single source of bilingual field knowledge.
var table = map[Field]map[Language]Wording{
	Brand: {
		French: {
			Label:    "Marque",
			Prompt:   "Quelle MARQUE recherchez-vous ?",
			Keywords: []Keyword{"marque*"},
			Labels:   []string{"Marque"},
		},
		English: {
			Label:    "Brand",
			Prompt:   "What BRAND are you looking for?",
			Keywords: []Keyword{"brand*", "make"},
			Labels:   []string{"Brand", "Make"},
		},
	},
	Condition: {
		French: {
			Label:    "Neuf ou usagé",
			Prompt:   "Neuf ou usagé ? Si usagé, merci d'ajouter l'année recherchée. (N/U)",
			Keywords: []Keyword{"neuf", "neuve", "usage*", "occasion"},
			Labels:   []string{"Neuf ou usagé", "Neuf/Usagé", "Neuf / Usagé", "État", "Condition"},
		},
		English: {
			Label:    "New or used",
			Prompt:   "New or used? (N/U)",
			Keywords: []Keyword{"new", "used"},
			Labels:   []string{"New or used", "New/Used", "New / Used", "Condition"},
		},
	},
	Model: {
		French: {
			Label:    "Modèle",
			Prompt:   "Quel MODÈLE exactement (Si vous ne les connaissez pas, mettre un point d'interrogation) ?",
			Keywords: []Keyword{"modele*"},
			Labels:   []string{"Modèle"},
		},
		English: {
			Label:    "Model",
			Prompt:   "What MODEL exactly?",
			Keywords: []Keyword{"model*"},
			Labels:   []string{"Model"},
		},
	},
	Trim: {
		French: {
			Label:    "Finition/Ensemble",
			Prompt:   "Quel niveau de finition ou ensemble (Si vous ne les connaissez pas, mettre un point d'interrogation) ?",
			Keywords: []Keyword{"finition*", "ensemble", "niveau"},
			Labels:   []string{"Finition/Ensemble", "Finition / Ensemble", "Finition", "Ensemble", "Version"},
		},
		English: {
			Label:    "Trim/Package",
			Prompt:   "What trim level or package? (If you don't know them, tell me and I'll list them)",
			Keywords: []Keyword{"trim*", "package*"},
			Labels:   []string{"Trim/Package", "Trim / Package", "Trim", "Package"},
		},
	},
	Powertrain: {
		French: {
			Label:    "Groupe motopropulseur",
			Prompt:   "Quel groupe motopropulseur ? Essence / Hybride / Électrique",
			Keywords: []Keyword{"motopropulseur*", "moteur", "motorisation"},
			Labels:   []string{"Groupe motopropulseur", "Motopropulseur", "Motorisation"},
		},
		English: {
			Label:    "Powertrain",
			Prompt:   "Which powertrain? Gas / Hybrid / Electric",
			Keywords: []Keyword{"powertrain*", "engine"},
			Labels:   []string{"Powertrain", "Engine"},
		},
	},
	Drivetrain: {
		French: {
			Label:    "Transmission",
			Prompt:   "Quelle transmission ? Traction avant / Traction intégrale / Propulsion",
			Keywords: []Keyword{"transmission", "traction"},
			Labels:   []string{"Transmission", "Traction"},
		},
		English: {
			Label:    "Drivetrain",
			Prompt:   "Which drivetrain? Front-wheel drive / All-wheel drive / Rear-wheel drive",
			Keywords: []Keyword{"drivetrain*", "transmission"},
			Labels:   []string{"Drivetrain", "Transmission"},
		},
	},
	Options: {
		French: {
			Label:    "Options indispensables",
			Prompt:   "Quelles options sont indispensables pour vous ?",
			Keywords: []Keyword{"option*", "indispensable*"},
			Labels:   []string{"Options indispensables", "Options"},
		},
		English: {
			Label:    "Essential options",
			Prompt:   "Which options are essential for you?",
			Keywords: []Keyword{"option*", "feature*", "essential"},
			Labels:   []string{"Essential options", "Options", "Features"},
		},
	},
	Color: {
		French: {
			Label:    "Couleurs préférées",
			Prompt:   "Quelles couleurs préférez-vous ?",
			Keywords: []Keyword{"couleur*"},
			Labels:   []string{"Couleurs préférées", "Couleurs", "Couleur"},
		},
		English: {
			Label:    "Preferred colors",
			Prompt:   "Which colors do you prefer?",
			Keywords: []Keyword{"color*", "colour*"},
			Labels:   []string{"Preferred colors", "Colors", "Color", "Colours", "Colour"},
		},
	},
	PaymentPlan: {
		French: {
			Label:    "Plan de paiement",
			Prompt:   "Quel plan de paiement ? Financement / Location / Comptant",
			Keywords: []Keyword{"paiement*", "financement", "location", "comptant"},
			Labels:   []string{"Plan de paiement", "Mode de paiement", "Paiement"},
		},
		English: {
			Label:    "Payment plan",
			Prompt:   "Which payment plan? Financing / Lease / Cash",
			Keywords: []Keyword{"payment*", "financing", "lease", "cash"},
			Labels:   []string{"Payment plan", "Payment"},
		},
	},
	TermBudget: {
		French: {
			Label:    "Durée/Budget mensuel",
			Prompt:   "Quelle durée et quel budget mensuel visez-vous ?",
			Keywords: []Keyword{"budget", "duree", "mois", "mensuel*"},
			Labels:   []string{"Durée/Budget mensuel", "Durée / Budget mensuel", "Durée/Budget", "Budget mensuel", "Budget"},
		},
		English: {
			Label:    "Term/Monthly budget",
			Prompt:   "What term and monthly budget are you aiming for?",
			Keywords: []Keyword{"budget", "term", "monthly", "months"},
			Labels:   []string{"Term/Monthly budget", "Term / Monthly budget", "Term/Budget", "Monthly budget", "Budget"},
		},
	},
	TradeIn: {
		French: {
			Label:    "Véhicule à échanger",
			Prompt:   "Avez-vous un véhicule à échanger ? (O/N)",
			Keywords: []Keyword{"echange*"},
			Labels:   []string{"Véhicule à échanger", "Échange"},
		},
		English: {
			Label:    "Trade-in vehicle",
			Prompt:   "Do you have a vehicle to trade in? (Y/N)",
			Keywords: []Keyword{"trade*"},
			Labels:   []string{"Trade-in vehicle", "Trade-in", "Trade in"},
		},
	},
	TradeInDetails: {
		French: {
			Label:    "Détails véhicule échange",
			Prompt:   "Quels sont l'année, la marque, le modèle et le kilométrage du véhicule à échanger ?",
			Keywords: []Keyword{"annee", "kilometrage", "vin", "details"},
			Require:  []Keyword{"vehicule*", "echange*"},
			Labels:   []string{"Détails véhicule échange", "Détails échange", "Détails de l'échange"},
		},
		English: {
			Label:    "Trade-in details",
			Prompt:   "What are the year, make, model and mileage of your trade-in?",
			Keywords: []Keyword{"year", "mileage", "vin", "details"},
			Require:  []Keyword{"trade*", "vehicle*"},
			Labels:   []string{"Trade-in details", "Trade in details"},
		},
	},
	DealershipCount: {
		French: {
			Label:    "Nombre de concessionnaires",
			Prompt:   "Combien de concessionnaires dois-je contacter ? (recommandé: 3-100)",
			Keywords: []Keyword{"concessionnaire*"},
			Labels:   []string{"Nombre de concessionnaires", "Nb concessionnaires", "# Concessionnaires", "Concessionnaires"},
		},
		English: {
			Label:    "Number of dealerships",
			Prompt:   "How many dealerships should I contact? (recommended: 3-100)",
			Keywords: []Keyword{"dealer*"},
			Labels:   []string{"Number of dealerships", "# Dealerships", "Dealerships"},
		},
	},
	ContactPreference: {
		French: {
			Label:    "Contact préféré",
			Prompt:   "Comment préférez-vous être contacté ? Courriel / SMS / Les deux",
			Keywords: []Keyword{"contacte*", "joindre", "sms", "les deux"},
			Require:  []Keyword{"prefer*"},
			Labels:   []string{"Contact préféré", "Méthode de contact", "Contact"},
		},
		English: {
			Label:    "Preferred contact",
			Prompt:   "How do you prefer to be contacted? Email / SMS / Both",
			Keywords: []Keyword{"contact*", "reach", "sms", "both"},
			Require:  []Keyword{"prefer*"},
			Labels:   []string{"Preferred contact", "Contact method", "Contact"},
		},
	},
	Name: {
		French: {
			Label:    "Nom",
			Prompt:   "Quel est votre nom svp ?",
			Keywords: []Keyword{"nom", "prenom", "appelez"},
			Labels:   []string{"Nom", "Nom complet"},
		},
		English: {
			Label:    "Name",
			Prompt:   "What is your name please?",
			Keywords: []Keyword{"name"},
			Labels:   []string{"Name", "Full name"},
		},
	},
	ContactInfo: {
		French: {
			Label:    "Courriel/Téléphone",
			Prompt:   "Quels sont votre courriel et votre numéro de téléphone ?",
			Keywords: []Keyword{"courriel*", "telephone*", "numero", "cellulaire"},
			Labels:   []string{"Courriel/Téléphone", "Courriel / Téléphone", "Courriel et téléphone", "Email/Téléphone", "Coordonnées"},
		},
		English: {
			Label:    "Email/Phone",
			Prompt:   "What are your email and phone number?",
			Keywords: []Keyword{"email*", "mail", "phone*", "number"},
			Labels:   []string{"Email/Phone", "Email / Phone", "Email and phone", "Contact info"},
		},
	},
	Email: {
		French: {
			Label:  "Courriel",
			Prompt: "Quelle est votre adresse courriel ?",
			Labels: []string{"Courriel", "Adresse courriel"},
		},
		English: {
			Label:  "Email",
			Prompt: "What is your email address?",
			Labels: []string{"Email", "E-mail", "Email address"},
		},
	},
	Phone: {
		French: {
			Label:  "Téléphone",
			Prompt: "Quel est votre numéro de téléphone ?",
			Labels: []string{"Téléphone", "Cellulaire", "Numéro de téléphone"},
		},
		English: {
			Label:  "Phone",
			Prompt: "What is your phone number?",
			Labels: []string{"Phone", "Phone number", "Telephone"},
		},
	},
	City: {
		French: {
			Label:    "Ville",
			Prompt:   "Dans quelle ville résidez-vous ? (Pour vous jumeler avec les concessionnaires les plus près)",
			Keywords: []Keyword{"ville", "residez", "habitez"},
			Labels:   []string{"Ville"},
		},
		English: {
			Label:    "City",
			Prompt:   "What city do you live in? (To match you with the closest dealerships)",
			Keywords: []Keyword{"city", "live", "reside*"},
			Labels:   []string{"City"},
		},
	},
	PrivacyChoice: {
		French: {
			Label:    "Confidentialité",
			Prompt:   "Niveau de confidentialité :\nA) Partager mes infos avec les concessionnaires gagnants seulement\nB) Ne pas partager - Sam relaie tout",
			Keywords: []Keyword{"confidentialite", "partager"},
			Labels:   []string{"Confidentialité"},
		},
		English: {
			Label:    "Privacy",
			Prompt:   "Privacy level:\nA) Share my info with winning dealerships only\nB) Don't share - Sam relays everything",
			Keywords: []Keyword{"privacy", "share"},
			Labels:   []string{"Privacy"},
		},
	},
}

// classifyOrder is the tie-break order for question classification: the
// canonical question order with the extended fields after trim.
var classifyOrder = []Field{
	Brand, Condition, Model, Trim,
	Powertrain, Drivetrain, Options, Color, PaymentPlan, TermBudget, TradeIn, TradeInDetails,
	DealershipCount, ContactPreference, Name, ContactInfo, City, PrivacyChoice,
}

var labelIndex = buildLabelIndex()

func buildLabelIndex() map[string]Field {
	idx := make(map[string]Field)
	for field, langs := range table {
		for _, w := range langs {
			for _, l := range w.Labels {
				idx[foldLabel(l)] = field
			}
		}
	}
	return idx
}

func foldLabel(l string) string {
	f := Fold(l)
	f = strings.Trim(f, "*_#: ")
	f = strings.ReplaceAll(f, " / ", "/")
	return f
}

// Lookup returns the wording of f in lang.
func Lookup(f Field, lang Language) Wording {
	return table[f][lang]
}

// Label returns the human-facing label for f in lang.
func Label(f Field, lang Language) string {
	return table[f][lang].Label
}

// FieldForLabel resolves a recap label in either language.
func FieldForLabel(label string) (Field, bool) {
	f, ok := labelIndex[foldLabel(label)]
	return f, ok
}

// Classify returns the field a question is asking about. Keywords of lang are
// tried first and the other language is consulted only when nothing matches,
// so mixed-language transcripts still classify. The highest scoring field wins;
// ties go to the field asked earlier in the canonical order.
func Classify(question string, lang Language) (Field, bool) {
	words := Words(Fold(question))
	if len(words) == 0 {
		return "", false
	}
	for _, l := range []Language{lang, lang.Other()} {
		if f, ok := classifyIn(words, l); ok {
			return f, true
		}
	}
	return "", false
}

func classifyIn(words []string, lang Language) (Field, bool) {
	var best Field
	bestScore := 0
	for _, f := range classifyOrder {
		w := table[f][lang]
		if len(w.Require) > 0 && !matchAny(w.Require, words) {
			continue
		}
		score := 0
		for _, kw := range w.Keywords {
			if kw.Match(words) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = f, score
		}
	}
	return best, bestScore > 0
}

func matchAny(kws []Keyword, words []string) bool {
	for _, kw := range kws {
		if kw.Match(words) {
			return true
		}
	}
	return false
}
