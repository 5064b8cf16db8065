package app

import (
	"errors"
	"fmt"
	"net/http"

	"olleblog/api/internal/blob"
	"olleblog/api/internal/docstore"
	"olleblog/api/internal/editor"
	"olleblog/api/internal/identity"
	"olleblog/api/internal/upload"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var batchErr *upload.BatchError
	if errors.As(err, &batchErr) {
		details := map[string]any{"file": batchErr.Name, "index": batchErr.Index}
		switch {
		case errors.Is(batchErr, blob.ErrBadCredentials):
			return http.StatusUnauthorized, "BAD_UPLOAD_TOKEN", "Upload token was rejected and has been cleared", details
		case errors.Is(batchErr, blob.ErrNoToken):
			return http.StatusUnauthorized, "UPLOAD_TOKEN_REQUIRED", "No upload token configured", details
		}
		return http.StatusBadGateway, "UPLOAD_FAILED", "Image upload failed", details
	}
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	case errors.Is(err, editor.ErrConfirmRequired):
		return http.StatusConflict, "CONFIRM_REQUIRED", "Removal requires confirmation", nil
	case errors.Is(err, editor.ErrSubmitInFlight):
		return http.StatusConflict, "SUBMIT_IN_FLIGHT", "A submit is already in progress", nil
	case errors.Is(err, editor.ErrSectionClosed):
		return http.StatusConflict, "SECTION_CLOSED", "Section is not open for editing", nil
	case errors.Is(err, editor.ErrUnknownSection), errors.Is(err, editor.ErrUnknownAction), errors.Is(err, editor.ErrIndexOutOfRange):
		return http.StatusBadRequest, "INVALID_ACTION", err.Error(), nil
	case errors.Is(err, upload.ErrNoImages):
		return http.StatusBadRequest, "NO_IMAGES", "No image files in upload", nil
	case errors.Is(err, blob.ErrBadCredentials):
		return http.StatusUnauthorized, "BAD_UPLOAD_TOKEN", "Upload token was rejected and has been cleared", nil
	case errors.Is(err, blob.ErrNoToken):
		return http.StatusUnauthorized, "UPLOAD_TOKEN_REQUIRED", "No upload token configured", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
