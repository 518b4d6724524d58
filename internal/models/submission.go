package models

// Submission is one entry parsed out of a listing page.
type Submission struct {
	SubmissionDate string `json:"submission_date"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	URL            string `json:"url"`
}

// SubmissionList is the structured result of a listing page.
type SubmissionList struct {
	Submissions []Submission `json:"submissions"`
}
