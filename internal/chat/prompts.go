package chat

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
)

var welcomeMessages = map[profile.Language]string{
	profile.French:  "Bonjour! Prêt à me laisser dénicher la meilleure offre pour un véhicule ? Auto, VUS ou pick-up, je peux vous aider ! Quelle MARQUE recherchez-vous ?",
	profile.English: "Hello! Ready to let me find the best deal for a vehicle? Car, SUV or pickup, I can help! What BRAND are you looking for?",
}

var apologies = map[profile.Language]string{
	profile.French:  "Sam est en congé de maladie 🤒",
	profile.English: "Sam is on sick leave 🤒",
}

// Welcome is Sam's opening message, which also asks the brand question.
func Welcome(lang profile.Language) string {
	return welcomeMessages[lang]
}

// Apology stands in for a reply when the assistant backend fails.
func Apology(lang profile.Language) string {
	return apologies[lang]
}

type promptText struct {
	intro         string
	rules         []string
	sequenceTitle string
	question      string
	summaryIntro  string
	confirm       string
	ifYes         string
	formatTitle   string
	recapHeading  string
	nextQuestion  string
	historyRules  []string
}

var promptTexts = map[profile.Language]promptText{
	profile.French: {
		intro: "Tu es Sam, Courtier Auto IA, un assistant IA spécialisé dans l'achat automobile au Québec.\n\n" +
			"MISSION PRINCIPALE:\nTu DOIS suivre EXACTEMENT la séquence de questions ci-dessous, une question à la fois, dans l'ordre précis.",
		rules: []string{
			"Pose SEULEMENT la prochaine question dans la séquence",
			"Ne pose JAMAIS deux questions en même temps",
			"Attends la réponse avant de passer à la question suivante",
			"Si la réponse n'est pas claire, redemande la MÊME question",
			"Reste concis et amical",
			"APRÈS CHAQUE RÉPONSE DE L'UTILISATEUR, affiche le récapitulatif des questions déjà répondues, puis une ligne \"---\", puis la prochaine question",
			"Si l'utilisateur répond par un point d'interrogation, donne le maximum de suggestions réelles pour la dernière question",
			"À la fin de chaque question, ajoute une ligne \"Suggestions : Suggestion1, Suggestion2, Suggestion3\" adaptée aux réponses précédentes",
		},
		sequenceTitle: "SÉQUENCE OBLIGATOIRE (RESPECTE L'ORDRE EXACT - %d QUESTIONS):",
		question:      "QUESTION %d: \"%s\"",
		summaryIntro:  "Voici votre profil complet :",
		confirm:       "Est-ce exact ? (O/N)",
		ifYes:         "(Si oui)",
		formatTitle:   "FORMAT DE RÉPONSE OBLIGATOIRE:",
		recapHeading:  "📋 **RÉCAPITULATIF** (Question X/%d complétées)",
		nextQuestion:  "[PROCHAINE QUESTION ICI]",
		historyRules: []string{
			"REGARDE attentivement chaque échange USER/ASSISTANT dans l'historique",
			"IDENTIFIE quelle question a été posée en dernier et si l'utilisateur y a répondu",
			"Ne saute JAMAIS de questions",
			"Si une réponse semble répondre à une question future, pose quand même les questions intermédiaires dans l'ordre",
		},
	},
	profile.English: {
		intro: "You are Sam, AI Auto Broker, an AI assistant specialized in car buying in Quebec.\n\n" +
			"MAIN MISSION:\nYou MUST follow EXACTLY the sequence of questions below, one question at a time, in the precise order.",
		rules: []string{
			"Ask ONLY the next question in the sequence",
			"NEVER ask two questions at the same time",
			"Wait for the answer before moving to the next question",
			"If the answer is not clear, ask the SAME question again",
			"Stay concise and friendly",
			"AFTER EACH USER RESPONSE, display the summary of questions already answered, then a \"---\" line, then the next question",
			"If the user replies with a question mark, suggest as many realistic options as possible for the last question",
			"At the end of each question, append a line \"Suggestions: Suggestion1, Suggestion2, Suggestion3\" based on previous answers",
		},
		sequenceTitle: "MANDATORY SEQUENCE (RESPECT THE EXACT ORDER - %d QUESTIONS):",
		question:      "QUESTION %d: \"%s\"",
		summaryIntro:  "Here is your complete profile:",
		confirm:       "Is this correct? (Y/N)",
		ifYes:         "(If yes)",
		formatTitle:   "MANDATORY RESPONSE FORMAT:",
		recapHeading:  "📋 **SUMMARY** (Question X/%d completed)",
		nextQuestion:  "[NEXT QUESTION HERE]",
		historyRules: []string{
			"CAREFULLY LOOK at each USER/ASSISTANT exchange in the history",
			"IDENTIFY what question was asked last and whether the user answered it",
			"NEVER skip questions",
			"If an answer seems to respond to a future question, still ask the intermediate questions in order",
		},
	},
}

// summaryFields is the field order of the final complete-profile block.
func summaryFields(seq profile.Sequence) []profile.Field {
	var out []profile.Field
	for _, f := range seq {
		if f == profile.ContactInfo {
			out = append(out, profile.Email, profile.Phone)
			continue
		}
		out = append(out, f)
	}
	return out
}

// SystemPrompt builds Sam's instructions for a sequence. Questions, labels
// and the closing phrase all come from the profile field table, so the
// prompt and the extractor agree on wording.
func SystemPrompt(lang profile.Language, seq profile.Sequence) string {
	t := promptTexts[lang]
	var sb strings.Builder

	sb.WriteString(t.intro)
	sb.WriteString("\n\n")
	for i, r := range t.rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, t.sequenceTitle, len(seq))
	sb.WriteString("\n\n")
	for i, prompt := range seq.Prompts(lang) {
		fmt.Fprintf(&sb, t.question, i+1, prompt)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "QUESTION %d: \"%s\n\n", len(seq)+1, t.summaryIntro)
	for _, f := range summaryFields(seq) {
		fmt.Fprintf(&sb, "- %s : [%s]\n", profile.Label(f, lang), placeholder(lang))
	}
	sb.WriteString("\n" + t.confirm + "\"\n\n")
	fmt.Fprintf(&sb, "QUESTION %d: %s \"%s\"\n\n", len(seq)+2, t.ifYes, profile.ClosingPhrase(lang))

	sb.WriteString(t.formatTitle + "\n\n")
	sb.WriteString(blankRecap(lang, seq, t.recapHeading))
	sb.WriteString("\n---\n\n" + t.nextQuestion + "\n\n")

	for _, r := range t.historyRules {
		sb.WriteString("- " + r + "\n")
	}
	return sb.String()
}

func placeholder(lang profile.Language) string {
	if lang == profile.English {
		return "collected answer"
	}
	return "réponse collectée"
}

func blankRecap(lang profile.Language, seq profile.Sequence, heading string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, heading, len(seq))
	sb.WriteString("\n")
	for _, f := range seq {
		fmt.Fprintf(&sb, "✅ %s : ---\n", profile.Label(f, lang))
	}
	return sb.String()
}
