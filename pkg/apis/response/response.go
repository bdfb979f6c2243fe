package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

type responseError struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
	Err     error   `json:"-"`
}

func (re *responseError) Error() string {
	if re == nil {
		return ""
	}
	if re.Err != nil {
		return fmt.Sprintf("%d: %s: %v", re.Code, re.Message, re.Err)
	}
	return fmt.Sprintf("%d: %s", re.Code, re.Message)
}

func (re *responseError) Unwrap() error {
	return re.Err
}

// MultiError is the JSON error envelope written by the handlers:
// {"errors":[{"code":...,"message":...}]}.
type MultiError struct {
	errors []error
}

func NewMultiError(err ...error) *MultiError {
	return &MultiError{
		errors: err,
	}
}

func (e *MultiError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Errors []error `json:"errors"`
	}{
		Errors: e.errors,
	})
}

func (e *MultiError) Error() string {
	es := make([]string, 0, len(e.errors))
	for _, err := range e.errors {
		es = append(es, err.Error())
	}
	return strings.Join(es, "; ")
}

func generateError(code ErrCode, s ...interface{}) *responseError {
	return &responseError{
		Code:    code,
		Message: fmt.Sprintf(errorMessages[code], s...),
	}
}

func generateErrorWrapper(code ErrCode, err error, s ...interface{}) *responseError {
	return &responseError{
		Code:    code,
		Message: fmt.Sprintf(errorMessages[code], s...),
		Err:     err,
	}
}
