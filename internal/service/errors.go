package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/pkg/api"
)

// toConnectError maps a domain error to a Connect error carrying the domain
// kind in the Piggybank-Error-Kind header. Internal causes are not exposed.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	code := apperr.CodeOf(err)
	msg := err
	if code == apperr.CodeInternal || code == apperr.CodeDependencyUnavailable {
		msg = errors.New(code.UserMessage())
	}
	cerr := connect.NewError(code.ConnectCode(), msg)
	cerr.Meta().Set(api.ErrorKindHeader, string(code))
	return cerr
}
