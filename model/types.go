package model

// QuestionType is the closed vocabulary shared by the builder, the public
// form, the answer-type predictor and the tabulation engine.
type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeCheckbox       QuestionType = "checkbox"

	// Premium placeholders: schema-valid but never rendered as interactive
	// inputs, and never suggested by the predictor.
	TypeRating  QuestionType = "rating"
	TypeMatrix  QuestionType = "matrix"
	TypeSlider  QuestionType = "slider"
	TypeRanking QuestionType = "ranking"
)

// Valid reports whether t belongs to the vocabulary.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeMultipleChoice, TypeCheckbox,
		TypeRating, TypeMatrix, TypeSlider, TypeRanking:
		return true
	}
	return false
}

// Interactive reports whether t renders as an actual input on the public form.
func (t QuestionType) Interactive() bool {
	switch t {
	case TypeText, TypeMultipleChoice, TypeCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether questions of type t carry configured options.
func (t QuestionType) HasOptions() bool {
	return t == TypeMultipleChoice || t == TypeCheckbox
}

// Display labels used on the predict-answer-type wire.
const (
	LabelText           = "Single text box"
	LabelMultipleChoice = "Multiple choice"
	LabelCheckbox       = "Checkboxes"
)

// Label returns the wire label for an interactive type.
func (t QuestionType) Label() (string, bool) {
	switch t {
	case TypeText:
		return LabelText, true
	case TypeMultipleChoice:
		return LabelMultipleChoice, true
	case TypeCheckbox:
		return LabelCheckbox, true
	}
	return "", false
}

// TypeForLabel maps a wire label back to the vocabulary. Unknown labels are
// ignored by callers, never applied.
func TypeForLabel(label string) (QuestionType, bool) {
	switch label {
	case LabelText:
		return TypeText, true
	case LabelMultipleChoice:
		return TypeMultipleChoice, true
	case LabelCheckbox:
		return TypeCheckbox, true
	}
	return "", false
}
