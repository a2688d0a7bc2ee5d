package models

// JoinedDateLayout is the calendar-date format of Member.JoinedDate.
const JoinedDateLayout = "2006-01-02"

type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	JoinedDate string `json:"joined_date"` // set on create, never changed
}

type MemberInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}
