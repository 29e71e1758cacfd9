// Package core provides the validation and cleaning engine.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Column not found: The selected column does not exist in the dataset
//	         Action: Pick a column from the preview list
//	         Patterns: "column not found"
//
//	VAL002 - Unknown check: The selected validation type is not supported
//	         Action: Choose one of the five validation types
//	         Patterns: "unknown check"
//
//	VAL003 - No problematic rows: The last validation found nothing to export or delete
//	         Action: Return to preview and run another validation
//	         Patterns: "no problematic rows"
//
//	VAL004 - No result: No validation has been run yet
//	         Action: Run a validation from the preview page
//	         Patterns: "no validation result"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure file is comma-separated with consistent columns
//	          Patterns: "invalid csv"
//
//	FILE003 - Invalid XLSX: File is not a readable Excel workbook
//	          Action: Re-save the file as .xlsx and upload again
//	          Patterns: "invalid xlsx"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or XLSX file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Action: Upload a file with a header row
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported format: Only CSV and XLSX files are supported
//	          Action: Upload a .csv or .xlsx file
//	          Patterns: "unsupported file format"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No dataset: No dataset is loaded
//	         Action: Upload a file on the home page
//	         Patterns: "no dataset loaded"
//
//	SES002 - Session expired: Your session was not found
//	         Action: Start again from the home page
//	         Patterns: "session not found"
//
//	SES003 - Invalid step: This action is not available on the current page
//	         Action: Use the navigation buttons to continue
//	         Patterns: "invalid state"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent uploads"
//
//	UPL002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL003 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first: a
// StateError carrying "no dataset loaded" maps to SES001, not SES003.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "The selected column does not exist in the dataset",
			Action:  "Pick a column from the preview list",
			Code:    "VAL001",
		},
	},
	{
		pattern: "unknown check",
		msg: UserMessage{
			Message: "The selected validation type is not supported",
			Action:  "Choose one of the five validation types",
			Code:    "VAL002",
		},
	},
	{
		pattern: "no problematic rows",
		msg: UserMessage{
			Message: "The last validation found no problematic data",
			Action:  "Return to preview and run another validation",
			Code:    "VAL003",
		},
	},
	{
		pattern: "no validation result",
		msg: UserMessage{
			Message: "No validation has been run yet",
			Action:  "Run a validation from the preview page",
			Code:    "VAL004",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "File is not a readable Excel workbook",
			Action:  "Re-save the file as .xlsx and upload again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or XLSX file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Only CSV and XLSX files are supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE006",
		},
	},

	// Session
	{
		pattern: "no dataset loaded",
		msg: UserMessage{
			Message: "No dataset is loaded",
			Action:  "Upload a file on the home page",
			Code:    "SES001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session was not found",
			Action:  "Start again from the home page",
			Code:    "SES002",
		},
	},
	{
		pattern: "invalid state",
		msg: UserMessage{
			Message: "This action is not available on the current page",
			Action:  "Use the navigation buttons to continue",
			Code:    "SES003",
		},
	},

	// Upload
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error and defaultMessage when nothing matches.
// An error that is already a UserError keeps its message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a known message rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
