package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline error codes, one per failure class. The linear stages
// (storage, submission, polling, extraction) fail the whole request;
// generation errors are scoped to a single document.
const (
	// ErrCodeValidation indicates the uploaded input was rejected before
	// any remote call.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
	// ErrCodeStorage indicates the object store rejected the upload.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeSubmission indicates the transcription backend did not
	// accept the job.
	ErrCodeSubmission ErrorCode = "SUBMISSION_ERROR"
	// ErrCodeRemoteFailure indicates the transcription backend reported
	// the job as Failed.
	ErrCodeRemoteFailure ErrorCode = "REMOTE_FAILURE"
	// ErrCodeTimeout indicates the polling deadline elapsed before the
	// job reached a terminal state.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExtraction indicates the transcript artifact was missing or
	// unparseable.
	ErrCodeExtraction ErrorCode = "EXTRACTION_ERROR"
	// ErrCodeGeneration indicates one document generation call failed.
	ErrCodeGeneration ErrorCode = "GENERATION_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage:    true,
	ErrCodeSubmission: true,
	ErrCodeTimeout:    true,
	ErrCodeGeneration: true,
}

// IsRetryableCode returns true if the error code indicates an error the
// caller may retry. Retries are never performed automatically — upstream
// calls are billed, so retrying is an explicit caller decision.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
