package errors

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendNil(t *testing.T) {
	err := New("error")
	errs := Append(nil, err)
	require.NotNil(t, errs)
	require.Equal(t, []error{err}, errs.Slice())

	require.Nil(t, Append(nil, nil))
	require.Equal(t, 1, Append(errs, nil).Len())
}

func TestAppendFlattens(t *testing.T) {
	err0, err1, err2 := New("error0"), New("error1"), New("error2")

	var first Errors
	first = Append(first, err0)
	second := Append(Append(nil, err1), err2)

	errs := Append(first, second)
	require.Equal(t, []error{err0, err1, err2}, errs.Slice())
	assert.Equal(t, "error0\nerror1\nerror2", errs.Error())
	// the original list is untouched
	assert.Equal(t, 1, first.Len())
}

func TestCombine(t *testing.T) {
	err0, err1 := New("error0"), New("error1")
	assert.Equal(t, err0, Combine(err0, nil))
	assert.Equal(t, err1, Combine(nil, err1))
	assert.Nil(t, Combine(nil, nil))

	combined, ok := Combine(err0, err1).(Errors)
	require.True(t, ok)
	assert.Equal(t, 2, combined.Len())
}

func TestHostError(t *testing.T) {
	cause := pkgerrors.New("permission denied")
	err := NewHostError("/src/a.py", cause, "cannot read %s", "a.py")

	assert.Equal(t, "cannot read a.py", err.Short)
	assert.Contains(t, err.Full, "permission denied")
	assert.Equal(t, "/src/a.py: cannot read a.py", err.Error())
	assert.Equal(t, cause, Cause(err))

	wrapped := Wrapf(err, "loading module")
	he, ok := AsHostError(wrapped)
	require.True(t, ok)
	assert.Equal(t, err, he)

	_, ok = AsHostError(New("plain"))
	assert.False(t, ok)
}
