package board

import "errors"

// Errors returned by drag and commit operations.
var (
	ErrSessionBusy     = errors.New("drag session already active")
	ErrNoActiveSession = errors.New("no active drag session")
	ErrCardNotFound    = errors.New("card not found")
	ErrCommitPending   = errors.New("status commit pending for card")
	ErrNoopTransition  = errors.New("status transition is a no-op")
	ErrNoStatusUpdater = errors.New("status updater is not configured")
)
