package model

import "fmt"

// IDAllocator hands out identifiers for questions, choices and conditions.
// The counter is monotonic and never reset, so identifiers are unique for the
// lifetime of the allocator and never reused after deletion. One allocator is
// owned by each builder; callers serialize access through the builder's lock.
type IDAllocator struct {
	next int64
}

// NewIDAllocator creates an allocator starting at 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// QuestionID returns the next question identifier.
func (a *IDAllocator) QuestionID() string {
	return a.take("q")
}

// ChoiceID returns the next choice identifier.
func (a *IDAllocator) ChoiceID() string {
	return a.take("c")
}

// ConditionID returns the next condition identifier.
func (a *IDAllocator) ConditionID() string {
	return a.take("d")
}

func (a *IDAllocator) take(prefix string) string {
	id := fmt.Sprintf("%s_%d", prefix, a.next)
	a.next++
	return id
}
