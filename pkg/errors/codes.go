package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeConflict        ErrorCode = "COMMON_004"
	ErrCodeTimeout         ErrorCode = "COMMON_005"
	ErrCodeValidation      ErrorCode = "COMMON_006"
	ErrCodeSerialization   ErrorCode = "COMMON_007"
	ErrCodeDatabaseError   ErrorCode = "COMMON_008"
	ErrCodeCacheError      ErrorCode = "COMMON_009"
	ErrCodeExternalService ErrorCode = "COMMON_010"
	ErrCodeNotImplemented  ErrorCode = "COMMON_011"
)

// Aliases kept for call-site readability.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed ErrorCode = "MOL_002"
	ErrCodeFingerprintFailed     ErrorCode = "MOL_003"
	ErrCodeDiversityFailed       ErrorCode = "MOL_004"
)

// Grammar Module Error Codes
const (
	ErrCodeGrammarEmpty          ErrorCode = "GRM_001"
	ErrCodeGrammarRuleInvalid    ErrorCode = "GRM_002"
	ErrCodeGrammarProduceFailed  ErrorCode = "GRM_003"
	ErrCodeGrammarDecomposeError ErrorCode = "GRM_004"
)

// Oracle (synthesizability scoring) Error Codes
const (
	ErrCodeOracleUnavailable ErrorCode = "ORC_001"
	ErrCodeOracleMalformed   ErrorCode = "ORC_002"
	ErrCodeOracleLockFailed  ErrorCode = "ORC_003"
)

// Training Module Error Codes
const (
	ErrCodeTraceInvariant    ErrorCode = "TRN_001"
	ErrCodeUnknownMetric     ErrorCode = "TRN_002"
	ErrCodeCheckpointFailed  ErrorCode = "TRN_003"
	ErrCodeResumeUnavailable ErrorCode = "TRN_004"
	ErrCodePolicyUpdate      ErrorCode = "TRN_005"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeConflict:        "resource conflict",
	ErrCodeTimeout:         "operation timed out",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeDatabaseError:   "database error",
	ErrCodeCacheError:      "cache error",
	ErrCodeExternalService: "external service error",
	ErrCodeNotImplemented:  "not implemented",

	ErrCodeMoleculeInvalidSMILES: "invalid SMILES format",
	ErrCodeMoleculeParsingFailed: "failed to parse molecule",
	ErrCodeFingerprintFailed:     "failed to generate fingerprint",
	ErrCodeDiversityFailed:       "diversity computation failed",

	ErrCodeGrammarEmpty:          "grammar has no production rules",
	ErrCodeGrammarRuleInvalid:    "invalid production rule",
	ErrCodeGrammarProduceFailed:  "grammar derivation failed",
	ErrCodeGrammarDecomposeError: "subgraph decomposition failed",

	ErrCodeOracleUnavailable: "synthesizability oracle unavailable",
	ErrCodeOracleMalformed:   "malformed oracle response",
	ErrCodeOracleLockFailed:  "failed to acquire oracle file lock",

	ErrCodeTraceInvariant:    "policy trace bookkeeping invariant violated",
	ErrCodeUnknownMetric:     "unknown evaluation metric",
	ErrCodeCheckpointFailed:  "failed to persist checkpoint",
	ErrCodeResumeUnavailable: "resume checkpoint not available",
	ErrCodePolicyUpdate:      "policy gradient update failed",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
