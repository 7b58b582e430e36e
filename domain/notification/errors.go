package notification

import "errors"

var (
	// ErrNoRecipients is returned when no To recipients are provided
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidRecipient is returned when a recipient has no email address
	ErrInvalidRecipient = errors.New("recipient must have an email address")

	// ErrNoDatasetName is returned when the dataset name is missing
	ErrNoDatasetName = errors.New("dataset name is required")

	// ErrNoArchiveURL is returned when no archive URL is provided
	ErrNoArchiveURL = errors.New("archive URL is required")

	// ErrSendFailed is returned when the email fails to send
	ErrSendFailed = errors.New("failed to send email")
)
