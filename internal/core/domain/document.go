package domain

// Document is a candidate file found in the root folder. It is read once
// during a run and never retained afterwards.
type Document struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Ext  string `json:"ext"`
	Size int64  `json:"size"`
}

type Failure struct {
	Document string      `json:"document,omitempty"`
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
}

type Outcome struct {
	Document    Document  `json:"document"`
	Category    Category  `json:"category"`
	Destination string    `json:"destination,omitempty"`
	Moved       bool      `json:"moved"`
	Failures    []Failure `json:"failures,omitempty"`
}
