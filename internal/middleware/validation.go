package middleware

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/pkg/api"
)

// ValidationInterceptor rejects requests whose message fails its validate tags.
func ValidationInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if err := api.Validate(req.Any()); err != nil {
				cerr := connect.NewError(connect.CodeInvalidArgument, err)
				cerr.Meta().Set(api.ErrorKindHeader, string(apperr.CodeValidation))
				return nil, cerr
			}
			return next(ctx, req)
		}
	}
}
