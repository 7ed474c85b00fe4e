package engine

import "errors"

var (
	// ErrInvalidFilter - unknown sort field or non-positive page/limit
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidMove - negative target index or unknown task id
	ErrInvalidMove = errors.New("invalid move")
	// ErrUnsupportedBackupVersion - backup version missing or not supported
	ErrUnsupportedBackupVersion = errors.New("unsupported backup version")
	// ErrMalformedBackup - payload fails structural validation as a whole
	ErrMalformedBackup = errors.New("malformed backup payload")
)
