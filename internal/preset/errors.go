package preset

import (
	"errors"

	"github.com/piwi3910/presettab/internal/model"
)

var (
	ErrNotDeletable    = errors.New("preset cannot be deleted")
	ErrNameConflict    = errors.New("preset name is taken by a system or external preset")
	ErrInvalidName     = errors.New("invalid preset name")
	ErrStorage         = errors.New("preset storage failed")
	ErrSwitchDeclined  = errors.New("preset switch declined")
	ErrReplaceDeclined = errors.New("replacing existing preset declined")
	ErrPresetNotFound  = errors.New("preset not found")
	ErrInvalidValue    = errors.New("invalid option value")
	ErrKeyNotFound     = model.ErrKeyNotFound
)
