package model

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens locally with a BPE encoding. Local backends such
// as LM Studio often omit usage figures; the estimator fills the gap so
// trajectories still carry token accounting.
type Estimator struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
	err      error
}

// NewEstimator creates a lazy token estimator using the cl100k_base
// encoding. Counts are approximations for non-OpenAI models but close
// enough for budgeting.
func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) load() {
	e.once.Do(func() {
		e.encoding, e.err = tiktoken.GetEncoding("cl100k_base")
	})
}

// Count returns the token count for a string, or 0 when the encoding
// cannot be loaded.
func (e *Estimator) Count(text string) int {
	e.load()
	if e.err != nil {
		return 0
	}
	return len(e.encoding.Encode(text, nil, nil))
}

// CountMessages estimates the token count of a message list, including a
// small per-message overhead for role framing.
func (e *Estimator) CountMessages(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += e.Count(m.Content) + 4
	}
	return total
}
