package models

// SubmissionRecord is one video from a listing page.
type SubmissionRecord struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	AID   int64  `json:"aid"`
}

// StreamRecord is a livestream recording selected from the submissions.
// Date is empty only while the record waits for the recovery pass.
type StreamRecord struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

// HasDate reports whether the record carries a broadcast date.
func (s StreamRecord) HasDate() bool {
	return s.Date != ""
}
