package apps

import (
	"errors"
	"fmt"
)

// ArgumentError reports an invalid command line argument.
type ArgumentError struct {
	msg string
}

func NewArgumentError(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{fmt.Sprintf(format, args...)}
}

func (err *ArgumentError) Error() string {
	return err.msg
}

func IsArgumentError(err error) bool {
	var aerr *ArgumentError
	return errors.As(err, &aerr)
}
