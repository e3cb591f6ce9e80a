package common

import "errors"

var (
	ErrUnknownProvider         = errors.New("unknown provider type")
	ErrPartialReviewSubmission = errors.New("review submission partially completed")
)
