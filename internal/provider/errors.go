package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"github.com/recreate-run/multimodal-analyzer/internal/apperror"
)

// wrapError maps an SDK error to a Provider error carrying the HTTP status
// when the SDK exposes one.
func wrapError(name string, err error) error {
	status := 0

	var oaErr *openai.Error
	var anErr *anthropic.Error
	var gErr genai.APIError
	switch {
	case errors.As(err, &oaErr):
		status = oaErr.StatusCode
	case errors.As(err, &anErr):
		status = anErr.StatusCode
	case errors.As(err, &gErr):
		status = gErr.Code
	}

	msg := describeStatus(status)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}

	return &apperror.Error{
		Kind:     apperror.KindProvider,
		Provider: name,
		Status:   status,
		Message:  msg,
		Err:      err,
	}
}

func describeStatus(status int) string {
	switch {
	case status == 0:
		return ""
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "authentication failed"
	case status == http.StatusTooManyRequests:
		return "rate limited"
	case status == http.StatusBadRequest:
		return "invalid request"
	case status == http.StatusNotFound:
		return "model not found"
	case status >= 500:
		return "upstream error"
	}
	return ""
}

func errEmptyResponse(name string) error {
	return &apperror.Error{Kind: apperror.KindProvider, Provider: name, Message: "empty response"}
}

func errUnsupportedAttachment(name, mime string) error {
	return apperror.Validation("%s models do not accept %s attachments", name, mime)
}

func errUnknownVendor(v Vendor) error {
	return apperror.Validation("unsupported vendor: %s", v)
}
