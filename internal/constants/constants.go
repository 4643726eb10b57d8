package constants

import "time"

// Context keys set by the auth middleware.
const (
	ContextKeyUserID   = "userID"
	ContextKeyUserRole = "userRole"
)

const MinPasswordLength = 6

// Session tokens are valid for 7 days.
const SessionLifetime = 7 * 24 * time.Hour

// One-time passcodes are 6 digits and expire after 5 minutes.
const (
	OTPLength   = 6
	OTPLifetime = 5 * time.Minute
)

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const MaxAIGeneratedTasks = 20

// MaxUploadSize caps multipart uploads at 10 MiB.
const MaxUploadSize = 10 << 20
