package service

import (
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
)

// checkID rejects identifiers that cannot exist in storage before they reach a uuid column.
func checkID(id, resource string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	}
	return nil
}
