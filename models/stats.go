package models

type DashboardStats struct {
	TotalBooks   int `json:"total_books"`
	TotalMembers int `json:"total_members"`
	BooksIssued  int `json:"books_issued"`
	OverdueBooks int `json:"overdue_books"`
}
