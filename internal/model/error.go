package model

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidSecret      = "INVALID_SECRET_FORMAT"
	CodeDecryptionFailed   = "DECRYPTION_FAILED"
	CodeRecordNotFound     = "RECORD_NOT_FOUND"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeNoActiveWallet     = "NO_ACTIVE_WALLET"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL"
	CodeUpstream           = "UPSTREAM"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
