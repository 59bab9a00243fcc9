package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleForCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeInternal, "COMMON"},
		{ErrCodeMoleculeInvalidSMILES, "MOL"},
		{ErrCodeGrammarEmpty, "GRM"},
		{ErrCodeOracleUnavailable, "ORC"},
		{ErrCodeTraceInvariant, "TRN"},
		{ErrorCode(""), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ModuleForCode(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "unknown evaluation metric", DefaultMessageForCode(ErrCodeUnknownMetric))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

//Personal.AI order the ending
