package model

// LearnedPattern is an operator-approved skip pattern proposed by the
// learning subsystem. It is read here, never written.
type LearnedPattern struct {
	ID          int64   `json:"id,string"`
	Pattern     string  `json:"pattern"`
	Intent      string  `json:"intent"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// CorrectionPattern is an aggregated operator correction of the classifier's intent.
type CorrectionPattern struct {
	FromIntent string
	ToIntent   string
	Count      int
}

// Guidance is extra classifier context learned from operator feedback.
type Guidance struct {
	Corrections   []CorrectionPattern
	Understanding string
}

func (g Guidance) IsEmpty() bool {
	return len(g.Corrections) == 0 && g.Understanding == ""
}
