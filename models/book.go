package models

// Book is a catalog entry. AvailableCopies + IssuedCopies always equals
// TotalCopies once a write has been committed.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	IssuedCopies    int    `json:"issued_copies"`
}

// BookInput is the client-writable part of a Book, used for create and update.
type BookInput struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"required"`
	Category    string `json:"category" validate:"required"`
	TotalCopies int    `json:"total_copies" validate:"gt=0"`
}
