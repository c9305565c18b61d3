package usecase

import "errors"

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeLeadNotFound      = "LEAD_NOT_FOUND"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeDatabase          = "DATABASE_ERROR"
)

// DomainError is a caller mistake: bad input, unknown lead, disallowed transition.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure the caller cannot fix.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode returns the machine-readable code of a domain or technical error, or "".
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
