package models

import "time"

// ClassStatus is the moderation state of a listing.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// Valid reports whether s is a known moderation state.
func (s ClassStatus) Valid() bool {
	switch s {
	case ClassStatusPending, ClassStatusApproved, ClassStatusDenied:
		return true
	}
	return false
}

// ClassListing is a course offered by an instructor. Seat counters are mutated only by
// the enrollment transition.
type ClassListing struct {
	ID              string      `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	ImageURL        string      `db:"image_url" json:"image"`
	InstructorName  string      `db:"instructor_name" json:"instructorName"`
	InstructorEmail string      `db:"instructor_email" json:"instructorEmail"`
	Price           float64     `db:"price" json:"price"`
	AvailableSeat   int         `db:"available_seat" json:"availableSeat"`
	TotalEnrolled   int         `db:"total_enrolled" json:"totalEnrolled"`
	Status          ClassStatus `db:"status" json:"status"`
	Feedback        *string     `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// SeatCounters is the post-enrollment state of a listing's counters.
type SeatCounters struct {
	AvailableSeat int `db:"available_seat" json:"availableSeat"`
	TotalEnrolled int `db:"total_enrolled" json:"totalEnrolled"`
}
