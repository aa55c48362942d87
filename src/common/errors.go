package common

import "errors"

var (
	ErrEventNotFound       = errors.New("event does not exist")
	ErrEventNotOpen        = errors.New("event is not open for registration")
	ErrAlreadyRegistered   = errors.New("already registered for this event")
	ErrParticipantNotFound = errors.New("participant does not exist")
	ErrPaymentNotFound     = errors.New("payment does not exist")
	ErrExternalService     = errors.New("payment service unavailable")
)
