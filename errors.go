package rabbit

import "fmt"

type ErrorCode string

const (
	ErrCodeLexical         ErrorCode = "LEXICAL_ERROR"
	ErrCodeSyntax          ErrorCode = "SYNTAX_ERROR"
	ErrCodeParse           ErrorCode = "PARSE_ERROR"
	ErrCodeUnboundName     ErrorCode = "UNBOUND_NAME"
	ErrCodeUnknownCallable ErrorCode = "UNKNOWN_CALLABLE"
	ErrCodeUnsupported     ErrorCode = "UNSUPPORTED_OPERATION"
	ErrCodeInput           ErrorCode = "INPUT_VALIDATION_ERROR"
	ErrCodeRegistry        ErrorCode = "REGISTRY_ERROR"
)

type Error struct {
	Code    ErrorCode
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
