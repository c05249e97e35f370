package dto

// SelectClassRequest adds a class to the caller's cart. The snapshot fields are read from
// the catalog, never from the client.
type SelectClassRequest struct {
	ClassID string `json:"classId" validate:"required"`
}
