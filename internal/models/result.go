package models

// InsertResult acknowledges a stored record.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult acknowledges a field overwrite.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult acknowledges a removal.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// EnrollmentResult reports the three committed steps of an enrollment together with the
// listing's counters after the seat was taken. It is only produced after commit.
type EnrollmentResult struct {
	InsertResult InsertResult `json:"insertResult"`
	UpdateResult UpdateResult `json:"updateResult"`
	DeleteResult DeleteResult `json:"deleteResult"`
	Seats        SeatCounters `json:"seats"`
}
