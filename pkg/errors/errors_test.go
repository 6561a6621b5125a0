package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeQuery, "bad bounds").WithDetail("column", "Year")

	assert.Equal(t, "query: bad bounds", err.Error())
	assert.Equal(t, "Year", err.Details["column"])
	assert.NotEmpty(t, err.Stack)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("open /tmp/x.csv: no such file")
	err := Wrap(cause, ErrorTypeFile, "failed to open source file")

	assert.Contains(t, err.Error(), "no such file")
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, IsType(err, ErrorTypeFile))
	assert.False(t, IsType(err, ErrorTypeQuery))

	assert.Nil(t, Wrap(nil, ErrorTypeFile, "ignored"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeData, "row rejected")
	outer := Wrap(inner, ErrorTypeFile, "file aborted")

	require.NotEmpty(t, outer.Stack)
	assert.Equal(t, inner.Stack, outer.Stack)

	var e *Error
	require.True(t, errors.As(outer, &e))
	assert.Equal(t, ErrorTypeFile, e.Type)
}
