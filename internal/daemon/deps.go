// SPDX-License-Identifier: MIT

package daemon

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

var (
	ErrMissingLogger         = errors.New("logger is required")
	ErrMissingAPIHandler     = errors.New("API handler is required")
	ErrMissingMetricsHandler = errors.New("metrics address set without a metrics handler")
	ErrMissingManager        = errors.New("manager is required")
	ErrManagerNotStarted     = errors.New("manager not started")
	ErrManagerAlreadyStarted = errors.New("manager already started")
)

// Deps is what the Manager serves. The metrics listener is optional and
// only started when both MetricsHandler and MetricsAddr are set.
type Deps struct {
	Logger         zerolog.Logger
	APIHandler     http.Handler
	MetricsHandler http.Handler
	MetricsAddr    string
}

// Validate reports every missing dependency at once.
func (d *Deps) Validate() error {
	var errs []error
	if d.Logger.GetLevel() == zerolog.Disabled {
		errs = append(errs, ErrMissingLogger)
	}
	if d.APIHandler == nil {
		errs = append(errs, ErrMissingAPIHandler)
	}
	if d.MetricsAddr != "" && d.MetricsHandler == nil {
		errs = append(errs, ErrMissingMetricsHandler)
	}
	return errors.Join(errs...)
}
