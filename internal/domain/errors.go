package domain

import "errors"

// ErrMalformedPayload is wrapped by every failure to read a required path of
// a webhook payload, so transport can answer 400 without inspecting messages.
var ErrMalformedPayload = errors.New("malformed payload")
