package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are stable strings so they
// can be matched by clients and emitted as metric labels.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeCancelled          ErrorCode = "COMMON_009"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	CodeOK                    ErrorCode = "OK"
)

// Dataset / descriptor-stats loading error codes.
const (
	ErrCodeDatasetLoad       ErrorCode = "DATA_001"
	ErrCodeDatasetMalformed  ErrorCode = "DATA_002"
	ErrCodeStatsLoad         ErrorCode = "DATA_003"
	ErrCodeCompoundNotFound  ErrorCode = "DATA_004"
	ErrCodeDescriptorUnknown ErrorCode = "DATA_005"
	ErrCodeDatabaseError     ErrorCode = "DATA_006"
	ErrCodeCacheError        ErrorCode = "DATA_007"
)

// Embedding subsystem error codes. Embedding failures are scoped to the
// embedding view and never block the primary compound list.
const (
	ErrCodeEmbeddingLoad      ErrorCode = "EMB_001"
	ErrCodeEmbeddingIDs       ErrorCode = "EMB_002"
	ErrCodeEmbeddingWeightOOB ErrorCode = "EMB_003"
)

// Structure renderer error codes.
const (
	ErrCodeRendererInit        ErrorCode = "RND_001"
	ErrCodeRendererUnavailable ErrorCode = "RND_002"
	ErrCodeNotationInvalid     ErrorCode = "RND_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status the interface layer should
// respond with. Unmapped codes fall back to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeNotationInvalid, ErrCodeEmbeddingWeightOOB, ErrCodeDescriptorUnknown:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeCompoundNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable, ErrCodeRendererUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
