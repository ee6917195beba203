// Package errors provides a small hierarchy of typed errors for ignite's
// storage, index, and validation failures. Each type embeds baseError for a
// cause, message, code, and a details map, then layers on the context that
// matters for its domain: which file and offset for storage, which field and
// rule for validation, which key and operation for the index. Callers that
// need that context back out of an error chain use the As* extraction
// helpers rather than type-asserting directly.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// AsValidationError extracts a ValidationError from an error chain, giving
// access to which field failed and what rule was violated.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts a StorageError from an error chain, giving access
// to the file path, name, and byte offset involved.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error in the chain that
// carries one, or returns ErrorCodeInternal for errors that don't.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	var ie *IndexError
	if stdErrors.As(err, &ie) {
		return ie.Code()
	}
	return ErrorCodeInternal
}

// ClassifyFileOpenError inspects an os.OpenFile failure on the data file and
// returns a StorageError carrying the specific error code the underlying
// syscall reported, so callers can distinguish a permissions problem from a
// full disk from a read-only mount rather than seeing a generic I/O error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open data file",
		).WithPath(filePath).
			WithFileName(fileName).
			WithDetail("operation", "file_open").
			WithDetail("suggestion", "check file permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create data file",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "free up disk space")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create data file on read-only filesystem",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to open data file").
		WithPath(filePath).
		WithFileName(fileName).
		WithDetail("operation", "file_open").
		WithDetail("flags", []string{"O_CREATE", "O_RDWR"})
}
