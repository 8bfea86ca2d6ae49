package persistence

import (
	"errors"

	"github.com/erp/posgateway/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM sentinel errors onto domain errors.
// The connection must be opened with TranslateError for duplicates to surface.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrDuplicate
	default:
		return err
	}
}
