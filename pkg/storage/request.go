package storage

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxPinSize is the largest upload accepted for pinning.
const MaxPinSize = 100 << 20

// ErrInvalidPin wraps validation failures of a pin request.
var ErrInvalidPin = errors.New("invalid pin request")

// PinRequest describes an upload before it is sent anywhere.
type PinRequest struct {
	Name string `json:"name"`
	// Size is the declared byte size; zero means unknown.
	Size int64 `json:"size,omitempty"`
}

// Validate checks the request fields. Failures wrap ErrInvalidPin and the
// underlying validation.Errors.
func (r PinRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255), validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("storage.pin.name_required", "name is required")
			}
			return nil
		})),
		validation.Field(&r.Size, validation.Min(int64(0)), validation.Max(int64(MaxPinSize))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPin, err)
	}
	return nil
}
