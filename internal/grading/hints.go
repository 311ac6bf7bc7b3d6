package grading

import (
	"fmt"
	"strings"
)

// Learner-facing messages.
const (
	HintCorrect         = "Richtig!"
	HintSpelling        = "Fast richtig, achte auf die Schreibweise."
	HintWrongPicture    = "Falsches Bild."
	HintPickPicture     = "Bitte ein Bild auswählen."
	HintTrueFalse       = "Bitte mit „wahr“ oder „falsch“ antworten."
	HintPickChoice      = "Bitte eine der Antworten auswählen."
	HintTwoPartFormat   = "Bitte zwei Begriffe mit ';' trennen."
	HintFirstPartWrong  = "Der erste Teil stimmt nicht."
	HintSecondPartWrong = "Der zweite Teil stimmt nicht."
	HintBothPartsWrong  = "Beide Teile stimmen nicht."
)

func wrongHint(answer string) string {
	if strings.TrimSpace(answer) == "" {
		return "Leider falsch."
	}
	return "Leider falsch. Richtige Antwort: " + answer
}

// withAnswer appends the canonical answer to a failure message.
func withAnswer(msg, answer string) string {
	if strings.TrimSpace(answer) == "" {
		return msg
	}
	return msg + " Richtige Antwort: " + answer
}

func forbiddenHint(term, explanation, answer string) string {
	parts := []string{fmt.Sprintf("Das ist hier falsch: „%s“", term)}
	if e := strings.TrimSpace(explanation); e != "" {
		parts = append(parts, "Begründung: "+e)
	}
	if strings.TrimSpace(answer) != "" && canonical(answer) != canonical(term) {
		parts = append(parts, "Richtige Antwort: "+answer)
	}
	return strings.Join(parts, "\n\n")
}
