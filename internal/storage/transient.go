package db

import (
	"context"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// IsTransient reports whether a failed write may succeed when retried:
// connection loss, serialization failures, deadlocks and server restarts.
// Constraint violations and other statement errors are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if apperrors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if apperrors.As(err, &connectErr) {
		return true
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	if apperrors.As(err, &netErr) {
		return true
	}

	return apperrors.Is(err, io.EOF) || apperrors.Is(err, io.ErrUnexpectedEOF)
}

func isTransientSQLState(code string) bool {
	if strings.HasPrefix(code, sqlStateConnectionExceptionClass) {
		return true
	}

	switch code {
	case sqlStateSerializationFailure,
		sqlStateDeadlockDetected,
		sqlStateTooManyConnections,
		sqlStateAdminShutdown,
		sqlStateCrashShutdown,
		sqlStateCannotConnectNow:
		return true
	default:
		return false
	}
}
