package scanner

import "errors"

var (
	// ErrAdapterUnavailable indicates no usable Bluetooth adapter was found
	ErrAdapterUnavailable = errors.New("bluetooth adapter not available")

	// ErrAdapterDisabled indicates the adapter exists but is powered off
	ErrAdapterDisabled = errors.New("bluetooth adapter is turned off")

	// ErrPowerUnsupported indicates the source cannot switch the adapter on
	ErrPowerUnsupported = errors.New("turning the adapter on is not supported on this platform")
)
