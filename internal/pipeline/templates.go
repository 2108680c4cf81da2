package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultTopicsTemplate asks for the flat topic list of one class.
// Placeholder: {{class}}.
const defaultTopicsTemplate = `
You are an expert math educator and curriculum designer. Given a class name (e.g., Algebra 1, Calculus 1, Linear Algebra), your task is to generate a detailed, flat list of all specific topics and subtopics typically covered in this course.

The class to analyze is: {{class}}

### Instructions:

- Think deeply about every concept and skill taught in this class.
- Break down every main topic into granular, specific subtopics or problem types.
- The goal is to generate a flat, exhaustive list that could be used for generating individual math problems or flashcards.
- Include specific techniques, problem types, representations, and variations.
- List as many distinct items as possible.

### Example (for Algebra 1):

"Solving single-variable linear equations"
"Graphing linear equations in slope-intercept form"
"Factoring trinomials"
"Solving quadratic equations with the quadratic formula"
"Solving systems of equations by substitution"

### IMPORTANT:
Return your response as a well-formed JSON object with a single "topics" key containing an array of topic strings. Format example:
{
  "topics": [
    "Topic 1",
    "Topic 2",
    "Topic 3"
  ]
}

### Now begin:

List of detailed topics for: {{class}}
`

// defaultPromptsTemplate asks for the problem subtypes of one topic.
// Placeholders: {{topic}}, {{class}}, {{topic_id}}.
const defaultPromptsTemplate = `
You are an expert math content creator with deep reasoning capabilities. Given a topic from {{class}}, your task is to generate a comprehensive list of problem subtypes with associated problem-generation prompts.

### Topic to analyze: {{topic}}

### Instructions:

1. Reflect on this topic and identify various problem types and subtypes within {{topic}}.
2. For each problem type/subtype, create a problem-generation prompt that can be used to generate specific math problems.
3. Output format: for each problem type, output a JSON object containing:
   - "id": a unique snake_case identifier (start with "{{topic_id}}_")
   - "title": a human-readable title (capitalized)
   - "topic": "{{topic}}"
   - "tags": an array of tags that describe this problem type
   - "prompt": a problem-generation prompt for that type. This should be specific enough to generate good practice problems.

### IMPORTANT:
Return your response as a well-formed JSON object with a single "problem_types" key containing an array of problem type objects.

### Example format:
{
  "problem_types": [
    {
      "id": "linear_equations_single_variable",
      "title": "Linear Equations (Single Variable)",
      "topic": "Algebra 1",
      "tags": ["linear equations", "one variable", "solving"],
      "prompt": "Generate a problem that involves solving a linear equation with one variable. The equation should include integers or simple fractions, and the solution should be a single value."
    }
  ]
}

Do not nest problem types within each other; provide a flat list of all problem types/subtypes.
`

// defaultProblemsTemplate asks for concrete problems for one subtype.
// Placeholders: {{count}}, {{prompt}}, {{title}}, {{topic}}, {{tags}},
// {{avoid}}.
const defaultProblemsTemplate = `
Generate {{count}} different math problems based on the following input:
- "prompt": {{prompt}}
- "type": "{{title}}"
- "topic": "{{topic}}"
- "tags": [{{tags}}]
{{avoid}}
Respond only with a valid JSON object with a "problems" key containing an array of {{count}} problem objects. Each problem object should have:
- "problem": The question, written in LaTeX and suitable for the front of an Anki card. Use $$...$$ to wrap display math.
- "answer": The final, concise answer, also using LaTeX with $$...$$.
- "solution": A clear, step-by-step explanation of how to solve the problem, fully formatted with LaTeX ($$...$$ where appropriate).

Only output a valid JSON object. Do not include any explanatory text outside the JSON.
`

func renderTopicsPrompt(tmpl, class string) string {
	if tmpl == "" {
		tmpl = defaultTopicsTemplate
	}
	return strings.ReplaceAll(tmpl, "{{class}}", class)
}

func renderBreakdownPrompt(tmpl, topicTitle, class string) string {
	if tmpl == "" {
		tmpl = defaultPromptsTemplate
	}
	return strings.NewReplacer(
		"{{topic}}", topicTitle,
		"{{class}}", class,
		"{{topic_id}}", snakeID(topicTitle),
	).Replace(tmpl)
}

func renderProblemsPrompt(tmpl, promptText, title, topic string, tags []string, count int, avoid []string) string {
	if tmpl == "" {
		tmpl = defaultProblemsTemplate
	}

	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = fmt.Sprintf("%q", tag)
	}

	return strings.NewReplacer(
		"{{count}}", fmt.Sprintf("%d", count),
		"{{prompt}}", promptText,
		"{{title}}", title,
		"{{topic}}", topic,
		"{{tags}}", strings.Join(quoted, ", "),
		"{{avoid}}", avoidBlock(avoid),
	).Replace(tmpl)
}

// avoidBlock renders the duplication-avoidance hint from recently
// generated problem texts. Empty input renders nothing.
func avoidBlock(recent []string) string {
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nDo not repeat any of these recently generated problems:\n")
	for _, text := range recent {
		fmt.Fprintf(&b, "- %s\n", text)
	}
	return b.String()
}

var nonIDChars = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// snakeID turns a topic title into a snake_case identifier prefix.
func snakeID(title string) string {
	cleaned := nonIDChars.ReplaceAllString(title, "")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cleaned)), " ", "_")
}
