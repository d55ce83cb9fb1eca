package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so copies produced by
// WithError still satisfy errors.Is against the predefined values.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	// Embedding store errors
	ErrInvalidEmbedding = &AppError{
		Code:       "INVALID_EMBEDDING",
		Message:    "Embedding does not match the configured dimension",
		StatusCode: 422,
	}

	ErrEmployeeNotFound = &AppError{
		Code:       "EMPLOYEE_NOT_FOUND",
		Message:    "Employee not found",
		StatusCode: 404,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Storage is temporarily unavailable",
		StatusCode: 503,
	}

	// Alert recording errors
	ErrSnapshotWrite = &AppError{
		Code:       "SNAPSHOT_WRITE_FAILED",
		Message:    "Failed to persist alert snapshot",
		StatusCode: 500,
	}

	// Camera errors
	ErrCameraNotFound = &AppError{
		Code:       "CAMERA_NOT_FOUND",
		Message:    "Camera not found",
		StatusCode: 404,
	}

	ErrCameraExists = &AppError{
		Code:       "CAMERA_ALREADY_EXISTS",
		Message:    "A camera with this name is already registered",
		StatusCode: 409,
	}

	ErrFrameQueueFull = &AppError{
		Code:       "FRAME_QUEUE_FULL",
		Message:    "Camera pipeline is saturated, frame dropped",
		StatusCode: 503,
	}

	ErrInvalidFrame = &AppError{
		Code:       "INVALID_FRAME",
		Message:    "Frame event is malformed",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many frames for this camera, slow down",
		StatusCode: 429,
	}
)
