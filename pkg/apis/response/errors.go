package response

var errorMessages = map[ErrCode]string{
	ErrCodeResourceNotFound: "The resource %s was not found.",
	ErrCodeInvalidParameter: "The parameter %s is invalid.",
}

// !!! IMPORTANT PLEASE READ FIRST !!!
// You SHOULD add new code at the end of enum firstly.

func ErrResourceNotFound(resource string) *responseError {
	return generateError(ErrCodeResourceNotFound, resource)
}

func ErrInvalidParameter(parameter string, err error) *responseError {
	return generateErrorWrapper(ErrCodeInvalidParameter, err, parameter)
}
