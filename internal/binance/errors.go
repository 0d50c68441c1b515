package binance

import (
	"errors"
	"fmt"
)

// APIError is an error response returned by the exchange. The message is kept
// verbatim for audit records.
type APIError struct {
	HTTPStatus int
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error %d (http %d): %s", e.Code, e.HTTPStatus, e.Msg)
}

// Exchange error codes that indicate an authentication problem rather than a
// connectivity one. These must stay diagnosable separately so credential
// rotation issues are visible.
const (
	codeTimestampOutOfWindow = -1021
	codeInvalidSignature     = -1022
	codeAPIKeyFormat         = -2014
	codeAPIKeyRejected       = -2015
)

// IsAuthError reports whether err is an exchange rejection of the signature,
// timestamp or API key.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case codeTimestampOutOfWindow, codeInvalidSignature, codeAPIKeyFormat, codeAPIKeyRejected:
		return true
	}
	return apiErr.HTTPStatus == 401
}
