// Package errors_test exercises the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"invalid notation", errors.ErrCodeInvalidNotation, "unmappable bond code 42"},
		{"malformed pattern", errors.ErrCodeMalformedPattern, "unexpected node in chain"},
		{"invalid graph", errors.ErrCodeInvalidGraph, "bond endpoints are identical"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeMalformedPattern, "atom %d carries %d ring closures", 3, 2)
	assert.Equal(t, "atom 3 carries 2 ring closures", ae.Message)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("yaml: line 3: did not find expected key")
	wrapped := errors.Wrap(root, errors.ErrCodeInvalidDocument, "decode notation graph")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeInvalidDocument, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.InvalidNotation("unknown bond code")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adapt input 2")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeInvalidNotation, outer.Code,
		"Wrap with CodeUnknown should inherit the inner AppError's code")
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.InvalidNotation("unknown bond code")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithoutDetail(t *testing.T) {
	t.Parallel()

	s := errors.MalformedPattern("bad chain").Error()
	assert.Equal(t, "[CHEM_002] bad chain", s)
	assert.Equal(t, 0, strings.Count(s, ": "))
}

func TestError_FormatWithDetail(t *testing.T) {
	t.Parallel()

	ae := errors.InvalidNotation("unmappable bond code").WithDetail("edge=1-2 code=17")
	assert.Equal(t, "[CHEM_001] unmappable bond code: edge=1-2 code=17", ae.Error())
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWithDetail / TestWithCause
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_SetsDetailOnCopy(t *testing.T) {
	t.Parallel()

	original := errors.InvalidGraph("duplicate bond")
	detailed := original.WithDetail("0-1")

	assert.Empty(t, original.Detail, "WithDetail must not mutate the original")
	assert.Equal(t, "0-1", detailed.Detail)
	assert.Equal(t, original.Code, detailed.Code)
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	t.Parallel()

	root := stderrors.New("open graph.yaml: no such file")
	original := errors.New(errors.ErrCodeInvalidDocument, "read input")
	ae := original.WithCause(root)

	assert.Nil(t, original.Cause)
	assert.Equal(t, root, stderrors.Unwrap(ae))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestIsCode / TestGetCode
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_NestedChain(t *testing.T) {
	t.Parallel()

	level0 := errors.MalformedPattern("two ring closures on one atom")
	level1 := errors.Wrap(level0, errors.CodeInvalidParam, "compile reaction")
	level2 := fmt.Errorf("batch item 4: %w", level1)

	assert.True(t, errors.IsCode(level2, errors.ErrCodeMalformedPattern))
	assert.True(t, errors.IsCode(level2, errors.CodeInvalidParam))
	assert.False(t, errors.IsCode(level2, errors.ErrCodeInvalidNotation))
	assert.True(t, errors.IsMalformedPattern(level2))
	assert.False(t, errors.IsInvalidNotation(level2))
}

func TestIsCode_NilAndStdlib(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	inner := errors.InvalidNotation("bad")
	outer := errors.Wrap(inner, errors.CodeInternal, "outer")

	assert.Equal(t, errors.CodeInternal, errors.GetCode(outer))
	assert.Equal(t, errors.ErrCodeInvalidNotation, errors.GetCode(inner))
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestConvenienceFactories
// ─────────────────────────────────────────────────────────────────────────────

func TestConvenienceFactories_ReturnCorrectCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      *errors.AppError
		wantCode errors.ErrorCode
	}{
		{"InvalidNotation", errors.InvalidNotation("bad bond"), errors.ErrCodeInvalidNotation},
		{"MalformedPattern", errors.MalformedPattern("bad tree"), errors.ErrCodeMalformedPattern},
		{"InvalidGraph", errors.InvalidGraph("self bond"), errors.ErrCodeInvalidGraph},
		{"InvalidParam", errors.InvalidParam("bad input"), errors.CodeInvalidParam},
		{"Internal", errors.Internal("boom"), errors.CodeInternal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, tc.err)
			assert.Equal(t, tc.wantCode, tc.err.Code)
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestStdlib_ErrorsAs_ExtractsAppError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("cli: %w", errors.InvalidGraph("foreign atom"))

	var ae *errors.AppError
	require.True(t, stderrors.As(wrapped, &ae))
	assert.Equal(t, errors.ErrCodeInvalidGraph, ae.Code)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", errors.Describe(nil))

	inner := errors.InvalidNotation("bond to missing vertex")
	outer := errors.Wrap(errors.Wrap(inner, errors.CodeUnknown, "graph 2"), errors.ErrCodeInvalidDocument, "decode")
	assert.Equal(t,
		"[CHEM_004] decode: [CHEM_001] graph 2: [CHEM_001] bond to missing vertex",
		errors.Describe(outer))

	assert.Equal(t, "[CHEM_004] x: plain", errors.Describe(errors.Wrap(fmt.Errorf("plain"), errors.ErrCodeInvalidDocument, "x")))
}
