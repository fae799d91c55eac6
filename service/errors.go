package service

import (
	"context"
	"errors"
	"fmt"

	"specter-vision/config"
)

const (
	KindUpstreamCall  = "UpstreamCallError"
	KindConfiguration = "ConfigurationError"
	KindCanceled      = "Canceled"
	KindInternal      = "InternalError"
)

// UpstreamCallError reports that the generative model could not be reached
// or refused the call. It is never produced for replies that merely fail to
// parse; those degrade inside the parser.
type UpstreamCallError struct {
	Source string
	Err    error
}

func (e *UpstreamCallError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Source, e.Err)
}

func (e *UpstreamCallError) Unwrap() error {
	return e.Err
}

// ErrorKind names the category of err for clients. A model call that timed
// out on its own is still an upstream failure; only the caller's own
// cancellation is reported as Canceled.
func ErrorKind(err error) string {
	var upstream *UpstreamCallError
	var cfgErr *config.ConfigurationError
	switch {
	case errors.As(err, &upstream):
		return KindUpstreamCall
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &cfgErr):
		return KindConfiguration
	default:
		return KindInternal
	}
}
