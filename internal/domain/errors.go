package domain

import "errors"

var (
	ErrBatchNotFound       = errors.New("batch not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidTransition   = errors.New("invalid batch state transition")
	ErrBatchNotProcessable = errors.New("batch is not in a processable state")
	ErrSplitNotProposed    = errors.New("batch has no proposed split to validate")
	ErrSplitNotValidated   = errors.New("batch split has not been validated")
)
