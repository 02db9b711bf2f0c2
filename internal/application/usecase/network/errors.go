package network

import "github.com/khoahotran/superleader/pkg/apperror"

const MaxActivityDays = 365

var (
	ErrMissingUserID = apperror.Definition{
		Name:        "network_missing_user_id",
		Base:        apperror.ErrInvalidInput,
		Message:     "user id is required",
		UserMessage: "We could not identify your account.",
	}
	ErrInvalidWindow = apperror.Definition{
		Name:        "network_invalid_window",
		Base:        apperror.ErrInvalidInput,
		Message:     "activity window must be between 1 and 365 days",
		UserMessage: "Pick a time range between 1 and 365 days.",
	}
	ErrInvalidTimezone = apperror.Definition{
		Name:        "network_invalid_timezone",
		Base:        apperror.ErrInvalidInput,
		Message:     "timezone is not a known IANA zone",
		UserMessage: "Your timezone setting is not recognised.",
	}
	ErrFetchCompleteness = apperror.Definition{
		Name:        "network_completeness_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch network completeness",
		UserMessage: "Profile completeness is unavailable right now.",
	}
	ErrFetchActivity = apperror.Definition{
		Name:        "network_activity_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch network activity",
		UserMessage: "Network activity is unavailable right now.",
	}
	ErrFetchTodaysActivity = apperror.Definition{
		Name:        "network_todays_activity_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch today's activity",
		UserMessage: "Today's activity is unavailable right now.",
	}
)
