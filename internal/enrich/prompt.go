package enrich

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a lexicographer writing entries for a vocabulary trainer. Entries are short, accurate and use everyday contexts.`

func buildUserMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Word: %s\n", in.Word)
	if in.Translation != "" {
		fmt.Fprintf(&b, "Meaning: %s\n", in.Translation)
	}
	if in.Language != "" {
		fmt.Fprintf(&b, "Learner language: %s\n", in.Language)
	}

	b.WriteString(`
Instructions:
1. Write one example sentence that uses the word in the sense given by the meaning above. Do not define the word inside the sentence.
2. Translate that sentence into the learner language. If none is given, repeat the sentence in simpler English.
3. Give a short English definition that does not contain the word itself.
4. Plain text only. No markdown, no quotes around the sentence.`)

	return b.String()
}
