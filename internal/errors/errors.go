package errors

import "errors"

var ErrNotFound = errors.New("key not found")

var ErrVoyageNotFound = errors.New("voyage not found")

var ErrCabinNotFound = errors.New("cabin not found")
var ErrCabinUnavailable = errors.New("cabin is already booked")
var ErrNoCabinSelected = errors.New("no cabin selected")

var ErrSessionNotFound = errors.New("booking session not found")
var ErrCheckoutNotStarted = errors.New("checkout has not been started")
var ErrCheckoutInProgress = errors.New("checkout is already in progress")
var ErrPaymentInFlight = errors.New("payment is already being processed")
var ErrPaymentNotReady = errors.New("checkout is not at the payment step")
var ErrCheckoutClosed = errors.New("checkout is already completed")
var ErrInvalidPackage = errors.New("unknown package tier")
