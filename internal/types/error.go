package types

import "errors"

var ErrNotFound = errors.New("not found")
var ErrNoRows = errors.New("no records found")
var ErrInvalidSignature = errors.New("invalid webhook signature")
var ErrStaleSignature = errors.New("webhook timestamp outside replay window")
var ErrUnknownProvider = errors.New("unknown provider")
