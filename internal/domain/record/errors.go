package record

import "errors"

// ErrMalformed signals a search record missing a mandatory field.
var ErrMalformed = errors.New("malformed search record")
