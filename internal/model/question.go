package model

// ConditionOperator compares a source question's answer against a literal value
type ConditionOperator string

const (
	OperatorEquals         ConditionOperator = "equals"
	OperatorNotEquals      ConditionOperator = "not-equals"
	OperatorContains       ConditionOperator = "contains"
	OperatorDoesNotContain ConditionOperator = "does-not-contain"
)

// Valid reports whether the operator is one of the fixed enumerated set.
func (op ConditionOperator) Valid() bool {
	switch op {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorDoesNotContain:
		return true
	}
	return false
}

// Choice is one answer option. An empty choice is a valid placeholder.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Condition is a display condition on a question. SourceID is a weak reference
// to another question: it stays behind when that question is deleted and the UI
// renders it as unresolved.
type Condition struct {
	ID       string            `json:"id"`
	SourceID string            `json:"sourceId"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// Question is one survey question. A question owns its choices and conditions
// exclusively and always has at least one choice.
type Question struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required"`
	Choices     []Choice    `json:"choices"`
	Conditions  []Condition `json:"conditions,omitempty"`
}

// Clone returns a deep copy of the question with identifiers preserved.
func (q Question) Clone() Question {
	out := q
	out.Choices = make([]Choice, len(q.Choices))
	copy(out.Choices, q.Choices)
	if len(q.Conditions) > 0 {
		out.Conditions = make([]Condition, len(q.Conditions))
		copy(out.Conditions, q.Conditions)
	}
	return out
}
