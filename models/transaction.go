package models

import "time"

type TransactionStatus string

const (
	StatusIssued   TransactionStatus = "issued"
	StatusReturned TransactionStatus = "returned"
)

// Transaction records one copy of a book lent to a member. It is created
// issued and moves to returned exactly once, after which it never changes.
type Transaction struct {
	ID         string            `json:"id"`
	BookID     string            `json:"book_id"`
	MemberID   string            `json:"member_id"`
	IssueDate  time.Time         `json:"issue_date"`
	DueDate    time.Time         `json:"due_date"`
	ReturnDate *time.Time        `json:"return_date"`
	Fine       float64           `json:"fine"`
	Status     TransactionStatus `json:"status"`
}

type IssueRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	MemberID string `json:"member_id" validate:"required"`
}

// TransactionFilter narrows a transaction listing. Empty fields match everything.
type TransactionFilter struct {
	Status   TransactionStatus
	MemberID string
	BookID   string
}

func (f TransactionFilter) Match(t Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.MemberID != "" && t.MemberID != f.MemberID {
		return false
	}
	if f.BookID != "" && t.BookID != f.BookID {
		return false
	}
	return true
}
