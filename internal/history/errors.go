package history

import "mossd/internal/errors"

const (
	ErrInvalidConfig     = errors.ErrInvalidConfig
	ErrInvalidDBPath     = errors.ErrorCode("history_invalid_db_path")
	ErrSchemaInitFailed  = errors.ErrorCode("history_schema_init_failed")
	ErrStorageInit       = errors.ErrInitFailed
	ErrStorageClose      = errors.ErrShutdownFailed
	ErrTransactionFailed = errors.ErrorCode("history_transaction_failed")
)
