package dto

// CreateClassRequest is submitted by an instructor. Ownership comes from the token.
type CreateClassRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	ImageURL       string  `json:"image" validate:"omitempty,url"`
	InstructorName string  `json:"instructorName" validate:"max=200"`
	Price          float64 `json:"price" validate:"gte=0"`
	AvailableSeat  int     `json:"availableSeat" validate:"gte=0"`
}

// FeedbackRequest carries an admin's moderation note.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}
