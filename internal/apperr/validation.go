package apperr

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FromValidation converts ozzo-validation field errors into a ValidationError
// carrying the first message in field order. Other errors are returned as is.
func FromValidation(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if errs[k] != nil {
			return Invalid(errs[k].Error())
		}
	}
	return nil
}
