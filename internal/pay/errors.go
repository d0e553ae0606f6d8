package pay

import "errors"

// ErrInvalidSignature is returned for webhooks failing HMAC verification.
var ErrInvalidSignature = errors.New("payments: invalid signature")
