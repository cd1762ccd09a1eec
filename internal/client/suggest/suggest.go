// Package suggest proposes what to ask next after an answer or a correction.
// Suggestions are keyword-driven and entirely local.
package suggest

import (
	"fmt"
	"strings"
)

const maxSuggestions = 4

type topic struct {
	// all keywords must appear when requireAll is set, otherwise any one
	keywords   []string
	requireAll bool
	lines      []string
}

func (t topic) matches(text string) bool {
	for _, k := range t.keywords {
		hit := strings.Contains(text, k)
		if t.requireAll && !hit {
			return false
		}
		if !t.requireAll && hit {
			return true
		}
	}
	return t.requireAll
}

// first topic that matches wins
func pick(topics []topic, text string) []string {
	text = strings.ToLower(text)
	for _, t := range topics {
		if t.matches(text) {
			return t.lines
		}
	}
	return nil
}

var followUpTopics = []topic{
	{keywords: []string{"acid", "base"}, requireAll: true, lines: []string{
		"What is the difference between strong and weak acids/bases?",
		"How do you calculate pH and pOH?",
	}},
	{keywords: []string{"bond", "lewis"}, lines: []string{
		"What are the different types of chemical bonds?",
		"How do you determine molecular geometry using VSEPR theory?",
	}},
	{keywords: []string{"reaction", "equation"}, lines: []string{
		"How do you balance chemical equations?",
		"What are the different types of chemical reactions?",
	}},
	{keywords: []string{"periodic", "element"}, lines: []string{
		"How is the periodic table organized?",
		"What are periodic trends and how do they work?",
	}},
}

// FollowUps returns up to four follow-up questions for question.
func FollowUps(question string) []string {
	q := strings.TrimSpace(question)
	out := []string{
		fmt.Sprintf("Can you explain the key concepts in %q in more detail?", q),
		fmt.Sprintf("What are some practical applications of the topic in %q?", q),
		fmt.Sprintf("What are the most important things to remember about %q?", q),
	}
	out = append(out, pick(followUpTopics, q)...)
	return out[:min(len(out), maxSuggestions)]
}

var relatedTopics = []topic{
	{keywords: []string{"acid", "base", "ph"}, lines: []string{
		"Calculate the pH of a 0.1 M HCl solution",
		"What is the difference between strong and weak acids?",
		"Explain acid-base titration",
	}},
	{keywords: []string{"bond", "lewis", "covalent"}, lines: []string{
		"Draw the Lewis structure for water (H2O)",
		"What is electronegativity and how does it affect bonding?",
		"Explain ionic vs covalent bonding",
	}},
	{keywords: []string{"reaction", "equation", "balance"}, lines: []string{
		"Balance the reaction: H2 + O2 → H2O",
		"What are the different types of chemical reactions?",
		"Explain the law of conservation of mass",
	}},
	{keywords: []string{"periodic", "element", "atom"}, lines: []string{
		"Explain atomic number and mass number",
		"What are valence electrons?",
		"Describe the structure of the periodic table",
	}},
	{keywords: []string{"gas", "pressure", "volume"}, lines: []string{
		"State Boyle's law",
		"What is the ideal gas law?",
		"Explain Charles's law",
	}},
}

var generalPractice = []string{
	"What is the difference between physical and chemical changes?",
	"Explain the scientific method",
	"What are the states of matter?",
}

// Related returns up to four practice prompts related to statement, padded
// with general ones when no topic matched.
func Related(statement string) []string {
	out := append([]string(nil), pick(relatedTopics, statement)...)
	if len(out) < 3 {
		out = append(out, generalPractice...)
	}
	return out[:min(len(out), maxSuggestions)]
}
