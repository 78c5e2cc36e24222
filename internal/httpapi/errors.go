package httpapi

import "errors"

var (
	errInvalidLatitude      = errors.New("latitude must be between -90 and 90")
	errInvalidLongitude     = errors.New("longitude must be between -180 and 180")
	errInvalidDepartureTime = errors.New("departure_time must be null or match HH:MM:SS")
)
