package questiongen

import (
	"fmt"
	"strings"
)

// Profile selects the framing of the generated questions. The legal profile
// mirrors the investigator variant of the tool: questions probe for
// offenses, applicable statutory articles, and evidentiary elements.
type Profile string

const (
	ProfileGeneral Profile = "general"
	ProfileLegal   Profile = "legal"
)

const generalSystemPrompt = "You are an experienced analyst who writes questions from the context you are given."

const legalSystemPrompt = `You are a criminal investigator. Your task is to find and identify criminal offenses and to ask about the relevant statutory articles under which an offense can be reported. Write questions that aim to confirm the offense and identify the applicable article, including the evidence or elements required to complete a criminal report. Make sure your questions help establish whether the elements of the offense are met and how the offense can be reported.`

// systemPrompt returns the system instruction for the given profile.
func systemPrompt(p Profile) string {
	if p == ProfileLegal {
		return legalSystemPrompt
	}
	return generalSystemPrompt
}

// buildPrompt asks for exactly n detailed, varied questions about document.
func buildPrompt(document string, n int, p Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following document, write %d detailed and varied questions.\n", n)
	if p == ProfileLegal {
		b.WriteString("The questions must reflect a deep legal analysis of the document's contents:\n\n")
	} else {
		b.WriteString("The questions must reflect a deep analysis of the document's contents:\n\n")
	}

	b.WriteString(document)
	b.WriteString("\n\nMake the questions varied and probing. Write one question per line, with no numbering or other text.")

	return b.String()
}
