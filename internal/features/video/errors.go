package video

import "errors"

var (
	ErrVideoNotFound  = errors.New("video not found")
	ErrInvalidStatus  = errors.New("invalid video status")
	ErrEmptyUpload    = errors.New("uploaded file is empty")
	ErrUploadTooLarge = errors.New("uploaded file exceeds the size limit")
)
