package db

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Database pool default constants
const (
	defaultMaxConns          int32         = 25
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)

// storeName labels retry metrics emitted by this store.
const storeName = "postgres"

// PostgreSQL error codes treated as transient.
const (
	sqlStateConnectionExceptionClass = "08"
	sqlStateSerializationFailure     = "40001"
	sqlStateDeadlockDetected         = "40P01"
	sqlStateTooManyConnections       = "53300"
	sqlStateAdminShutdown            = "57P01"
	sqlStateCrashShutdown            = "57P02"
	sqlStateCannotConnectNow         = "57P03"
)

const (
	logFieldAttempt = "attempt"
	logFieldDelay   = "delay"
	logFieldTable   = "table"
	logFieldModelID = "model_id"
	logFieldRows    = "rows"
)
