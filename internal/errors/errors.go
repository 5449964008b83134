package errors

import "errors"

var (
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenAlreadyUsed    = errors.New("token already used")
	ErrTokenIssuanceFailed = errors.New("token issuance failed")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrTemplateNotFound    = errors.New("email template not found")
	ErrUploadValidation    = errors.New("upload validation failed")
	ErrStorageUnavailable  = errors.New("document storage unavailable")
	ErrMailDeliveryFailed  = errors.New("mail delivery failed")

	// Fallos tipados de la pasarela de almacenamiento. Todos se presentan al
	// usuario como ErrStorageUnavailable; el tipo concreto queda en los logs.
	ErrMissingFolder      = errors.New("missing remote folder")
	ErrMissingAccessToken = errors.New("missing access token")
	ErrFileRead           = errors.New("cannot read file")
	ErrStorageTransport   = errors.New("storage transport failure")
	ErrStorageAPI         = errors.New("storage api error")
	ErrInvalidResponse    = errors.New("invalid storage response")
)
