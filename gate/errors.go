package gate

import (
	"errors"

	"github.com/diewo77/go-crm/internal/apperrors"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthenticated = apperrors.New(apperrors.CodeInvalidToken, "not authenticated")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)
