package profile

// Sequence is the ordered list of questions the assistant is instructed to
// ask. Its order is what the positional extraction strategy relies on.
type Sequence []Field

// StandardSequence is the ten-question flow.
var StandardSequence = Sequence{
	Brand, Condition, Model, Trim, DealershipCount,
	ContactPreference, Name, ContactInfo, City, PrivacyChoice,
}

// ExtendedSequence adds the powertrain, options, payment and trade-in
// questions after the trim question.
var ExtendedSequence = Sequence{
	Brand, Condition, Model, Trim,
	Powertrain, Drivetrain, Options, Color, PaymentPlan, TermBudget, TradeIn, TradeInDetails,
	DealershipCount, ContactPreference, Name, ContactInfo, City, PrivacyChoice,
}

// SequenceFor picks the standard or extended flow.
func SequenceFor(extended bool) Sequence {
	if extended {
		return ExtendedSequence
	}
	return StandardSequence
}

// Index returns the position of f in the sequence, or -1.
func (s Sequence) Index(f Field) int {
	for i, x := range s {
		if x == f {
			return i
		}
	}
	return -1
}

// Prompts returns the canonical questions in order for lang.
func (s Sequence) Prompts(lang Language) []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = Lookup(f, lang).Prompt
	}
	return out
}
