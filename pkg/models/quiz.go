package models

// QuizOption is a candidate answer for a question
type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuizQuestion is a single multiple-choice step of a quiz session
type QuizQuestion struct {
	WordID       string       `json:"wordId"`
	QuestionText string       `json:"questionText"`
	Options      []QuizOption `json:"options"`
	CorrectID    string       `json:"correctId"`
}

// Option returns the option with the given id
func (q QuizQuestion) Option(id string) (QuizOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return QuizOption{}, false
}
