// Package curriculum defines the generated curriculum records and their
// JSON file persistence.
package curriculum

// TopicList is the topics.json shape: the flat list of topics generated
// for one class.
type TopicList struct {
	Topics []string `json:"topics"`
}

// ProblemType describes one problem subtype and the text template used to
// ask the model for problems of that subtype. One entry of prompts.json.
type ProblemType struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Topic  string   `json:"topic"`
	Tags   []string `json:"tags"`
	Prompt string   `json:"prompt"`
}

// Valid reports whether the entry carries every required field.
func (p ProblemType) Valid() bool {
	return p.ID != "" && p.Title != "" && p.Topic != "" && p.Prompt != ""
}

// Problem is one generated practice problem. All three fields are LaTeX
// text. One entry of problems.json.
type Problem struct {
	Problem  string `json:"problem"`
	Answer   string `json:"answer"`
	Solution string `json:"solution"`
}

// Complete reports whether the problem carries all three text fields.
// Incomplete problems are discarded by the pipeline.
func (p Problem) Complete() bool {
	return p.Problem != "" && p.Answer != "" && p.Solution != ""
}
