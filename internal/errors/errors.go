package gerr

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrAlreadySubscribed   = errors.New("submitted email already subscribed")
	ErrAlreadyUnsubscribed = errors.New("subscriber already inactive")
	ErrEmailTaken          = errors.New("email is used by another record")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrNotAuthenticated    = errors.New("not authenticated")
	MailApiLimitReached    = errors.New("mail api limit reached")
)
