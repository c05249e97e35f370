package models

import "time"

// SelectionEntry is a cart line: a class a student picked but has not paid for yet.
// Price, title and instructor are snapshotted at selection time.
type SelectionEntry struct {
	ID             string    `db:"id" json:"id"`
	StudentEmail   string    `db:"student_email" json:"studentEmail"`
	ClassID        string    `db:"class_id" json:"classId"`
	Name           string    `db:"name" json:"name"`
	ImageURL       string    `db:"image_url" json:"image"`
	InstructorName string    `db:"instructor_name" json:"instructorName"`
	Price          float64   `db:"price" json:"price"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
