// Package extractor rebuilds a VehicleProfile from a free-text conversation
// between the buyer and Sam.
package extractor

import (
	"log/slog"

	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

// Options tunes a single extraction.
type Options struct {
	Language profile.Language
	// Sequence is the question order the assistant was instructed to follow.
	// Defaults to profile.StandardSequence.
	Sequence profile.Sequence
	// Known holds fields recovered earlier, e.g. before a session resumed.
	// Known values are never overwritten by a strategy.
	Known profile.VehicleProfile
	// Truncated marks a transcript whose early turns were pruned, which makes
	// positional alignment meaningless.
	Truncated bool
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = profile.French
	}
	if len(o.Sequence) == 0 {
		o.Sequence = profile.StandardSequence
	}
	return o
}

// strategy produces a partial profile from the transcript. acc is the
// accumulated result so far and must not be modified.
type strategy struct {
	name  string
	run   func(t transcript.Transcript, opts Options, acc profile.VehicleProfile) profile.VehicleProfile
	merge func(acc *profile.VehicleProfile, partial profile.VehicleProfile) []profile.Field
}

// pipeline is ordered by precedence: a field is taken from the first strategy
// that produces it. The complete-profile recap is the assistant's own
// confirmed understanding, so it outranks positional alignment.
var pipeline = []strategy{
	{name: "summary", run: summaryStrategy},
	{name: "positional", run: positionalStrategy},
	{name: "recap", run: recapStrategy},
	{name: "pairing", run: pairingStrategy},
	{name: "contact", run: contactStrategy, merge: mergeContact},
}

type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract runs every strategy over t and returns the merged, normalised
// profile. It never fails: fields no strategy can determine stay absent.
func (e *Extractor) Extract(t transcript.Transcript, opts Options) profile.VehicleProfile {
	opts = opts.withDefaults()
	acc := opts.Known.Clone()

	for _, s := range pipeline {
		if s.name == "positional" && opts.Truncated {
			continue
		}
		partial := s.run(t, opts, acc)
		var filled []profile.Field
		if s.merge != nil {
			filled = s.merge(&acc, partial)
		} else {
			filled = acc.Merge(partial)
		}
		if len(filled) > 0 {
			e.logger.Debug("extraction strategy filled fields",
				"strategy", s.name,
				"fields", fieldNames(filled),
			)
		}
	}

	normalize(&acc, opts.Language)

	e.logger.Debug("extraction complete",
		"language", string(opts.Language),
		"turns", len(t),
		"fields", acc.Len(),
	)
	return acc
}

func fieldNames(fields []profile.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
