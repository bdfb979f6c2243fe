package response

type ErrCode int

const (
	_                       ErrCode = 10000 + iota
	ErrCodeResourceNotFound         // 10001
	ErrCodeInvalidParameter         // 10002
)

// !!! IMPORTANT PLEASE READ FIRST !!!
// You SHOULD add new code at the end, and append comment of number
// Meanwhile, the corresponding error message SHOULD be appended in response.errorMessages
// The order MUST be consistent between them
