package errors

import "errors"

// Error types used across the application
const (
	NotFound               = "NotFound"
	notFoundMessage        = "record not found"
	ValidationError        = "ValidationError"
	validationErrorMessage = "validation error"
	ResourceAlreadyExists  = "ResourceAlreadyExists"
	alreadyExistsMessage   = "resource already exists"
	NotAuthenticated       = "NotAuthenticated"
	notAuthenticatedMsg    = "not authenticated"
	NotAuthorized          = "NotAuthorized"
	notAuthorizedMsg       = "not authorized"
	NetworkFailure         = "NetworkFailure"
	networkFailureMessage  = "network request failed"
	RetriesExhausted       = "RetriesExhausted"
	retriesExhaustedMsg    = "max retries exceeded"
	ChannelProviderFailure = "ChannelProviderFailure"
	channelProviderMsg     = "channel provider error"
	StorageUnavailable     = "StorageUnavailable"
	storageUnavailableMsg  = "durable storage unavailable"
	InvalidTransition      = "InvalidTransition"
	invalidTransitionMsg   = "status transition not allowed"
	UnknownError           = "UnknownError"
	unknownErrorMessage    = "something went wrong"
)

// AppError defines an application (domain) error with a type
type AppError struct {
	Err  error
	Type string
}

func NewAppError(err error, errType string) *AppError {
	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func NewAppErrorWithType(errType string) *AppError {
	var err error

	switch errType {
	case NotFound:
		err = errors.New(notFoundMessage)
	case ValidationError:
		err = errors.New(validationErrorMessage)
	case ResourceAlreadyExists:
		err = errors.New(alreadyExistsMessage)
	case NotAuthenticated:
		err = errors.New(notAuthenticatedMsg)
	case NotAuthorized:
		err = errors.New(notAuthorizedMsg)
	case NetworkFailure:
		err = errors.New(networkFailureMessage)
	case RetriesExhausted:
		err = errors.New(retriesExhaustedMsg)
	case ChannelProviderFailure:
		err = errors.New(channelProviderMsg)
	case StorageUnavailable:
		err = errors.New(storageUnavailableMsg)
	case InvalidTransition:
		err = errors.New(invalidTransitionMsg)
	default:
		err = errors.New(unknownErrorMessage)
	}

	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func (appErr *AppError) Error() string {
	return appErr.Err.Error()
}

func (appErr *AppError) Unwrap() error {
	return appErr.Err
}
