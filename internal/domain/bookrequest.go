package domain

import "time"

type RequestType string

const (
	RequestTypeIssue  RequestType = "issue"
	RequestTypeReturn RequestType = "return"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// BookRequest is a faculty-submitted issue or return intent awaiting a
// manager decision. Approved and rejected are terminal; a decided request
// is never re-opened.
type BookRequest struct {
	ID           int32         `json:"id"`
	StudentID    int32         `json:"student_id"`
	FacultyID    int32         `json:"faculty_id"`
	BookID       int32         `json:"book_id"`
	Type         RequestType   `json:"type"`
	Status       RequestStatus `json:"status"`
	Reason       string        `json:"reason"`
	ManagerNotes string        `json:"manager_notes"`
	RequestedOn  time.Time     `json:"requested_on"`
	DecidedOn    *time.Time    `json:"decided_on,omitempty"`
	DecidedBy    *int32        `json:"decided_by,omitempty"`

	// Snapshots taken at creation time.
	StudentName       string  `json:"student_name"`
	StudentEnrollment *string `json:"student_enrollment,omitempty"`
	FacultyName       string  `json:"faculty_name"`
	BookTitle         string  `json:"book_title"`
	BookAuthor        string  `json:"book_author"`
}
