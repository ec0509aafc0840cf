package predict

import (
	"regexp"
	"strings"

	"github.com/surveyforge/surveyforge/model"
)

type bucket struct {
	qtype    model.QuestionType
	patterns []*regexp.Regexp
}

// Buckets are evaluated in fixed priority order, patterns in declaration
// order. The first match wins and short-circuits everything after it.
var rules = []bucket{
	{model.TypeText, compile(
		`enter\s+your\s+name`,
		`what\s+is\s+your\s+name`,
		`your\s+name`,
		`enter\s+name`,
		`name\s*$`,
		`email\s*(address)?`,
		`enter\s+your\s+email`,
		`what\s+is\s+your\s+email`,
		`phone\s*(number)?`,
		`enter\s+your\s+phone`,
		`address`,
		`enter\s+your\s+address`,
		`company\s+name`,
		`job\s+title`,
		`how\s+old\s+are\s+you`,
		`age\s*$`,
		`enter\s+your`,
		`please\s+provide\s+your`,
		`type\s+your`,
		`write\s+your`,
	)},
	{model.TypeMultipleChoice, compile(
		`select\s+your\s+preference`,
		`select\s+(one|a)\s+option`,
		`choose\s+(one|your)`,
		`which\s+one\s+(do\s+you|would\s+you)`,
		`pick\s+(one|your)`,
		`what\s+is\s+your\s+preference`,
		`prefer`,
		`select\s+from\s+the`,
		`choose\s+from`,
		`which\s+(option|choice)`,
		`how\s+would\s+you\s+rate`,
		`rate\s+your\s+experience`,
		`select\s+the\s+(best|option)`,
		`choose\s+the\s+(best|option)`,
		`one\s+of\s+the\s+following`,
		`select\s+one`,
		`choose\s+one`,
		`pick\s+one`,
		`which\s+of\s+these`,
		`select\s+your`,
		`choose\s+your`,
	)},
	{model.TypeCheckbox, compile(
		`select\s+all\s+that\s+apply`,
		`check\s+all\s+that\s+apply`,
		`which\s+of\s+the\s+following`,
		`select\s+all`,
		`check\s+all`,
		`select\s+any`,
		`choose\s+all`,
		`which\s+apply`,
		`tick\s+all`,
		`mark\s+all`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// Evaluate suggests an interactive question type for free-form question text.
// It is a pure function: same input, same output. Empty or whitespace-only
// input yields no suggestion without touching any rule.
func Evaluate(text string) (model.QuestionType, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}

	for _, b := range rules {
		for _, p := range b.patterns {
			if p.MatchString(trimmed) {
				return b.qtype, true
			}
		}
	}
	return "", false
}
