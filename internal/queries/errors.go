package queries

import "errors"

var ErrMissingDeviceID = errors.New("device id is required")
