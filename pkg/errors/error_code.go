package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidTimeframe     ErrorCode = 103
	ErrCodeInvalidDateRange     ErrorCode = 104
	ErrCodeInvalidSignal        ErrorCode = 105
	ErrCodeInvalidOrderIntent   ErrorCode = 106
	ErrCodeInvalidWindow        ErrorCode = 107

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204
	ErrCodeInsufficientData      ErrorCode = 205

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded    ErrorCode = 400
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeUnsupportedStrategy  ErrorCode = 403

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 601
	ErrCodeBacktestConfigError  ErrorCode = 602
	ErrCodeBacktestNoDatasource ErrorCode = 608

	// Persistence errors (900-999)
	ErrCodePersistenceFailed ErrorCode = 900
	ErrCodeAttributionFailed ErrorCode = 901
	ErrCodeRiskStatsFailed   ErrorCode = 902
)

// IsValidation reports whether the code belongs to the validation range.
func (c ErrorCode) IsValidation() bool {
	return c >= 100 && c < 200
}

// IsData reports whether the code belongs to the data range.
func (c ErrorCode) IsData() bool {
	return c >= 200 && c < 300
}

// IsPersistence reports whether the code belongs to the persistence range.
func (c ErrorCode) IsPersistence() bool {
	return c >= 900 && c < 1000
}
