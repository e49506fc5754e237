// Package payload contains the canonical submission data model and the pure
// normalization logic that turns raw captured input into one deterministic shape.
package payload

// MaxPhotos is the hard cap on photo attachments per submission.
const MaxPhotos = 5

// Attachment is a named, already-encoded image (sketch or photo).
// Encoding/compression happens outside this package; an attachment arrives
// here as a finished data URL.
type Attachment struct {
	Filename string `json:"filename"`
	DataURL  string `json:"dataUrl"`
}

// Row is one repeater row: canonical field name -> value (string or bool).
type Row map[string]any

// Submission is the unit of work: one field record with a stable identity.
type Submission struct {
	SubmissionID string           `json:"submissionId"`
	PageType     string           `json:"pageType"`
	DeviceID     string           `json:"deviceId"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
	Fields       map[string]any   `json:"fields"`
	Repeaters    map[string][]Row `json:"repeaters"`
	Sketch       *Attachment      `json:"sketch"`
	Photos       []Attachment     `json:"photos"`

	// Action is set on the wire for updates so the store can route on the
	// body even if it ignores the query string.
	Action string `json:"action,omitempty"`
}

// Identity carries the locked identity fields applied during normalization.
type Identity struct {
	SubmissionID string
	DeviceID     string
	CreatedAt    string
	UpdatedAt    string
}

// RawCapture is the un-normalized snapshot handed over by the capture layer.
type RawCapture struct {
	Fields    map[string]any
	Repeaters map[string][]Row
	Sketch    *Attachment
	Photos    []Attachment
}
