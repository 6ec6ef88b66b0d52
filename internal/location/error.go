package location

import "errors"

var (
	// -- Validation & Input --
	ErrUserRequired   = errors.New("user required")
	ErrMissingField   = errors.New("please fill all fields")
	ErrUnknownVillage = errors.New("village not found for the selected district")

	// -- Backend --
	ErrFailedSaveLocation = errors.New("failed to save location")
)
