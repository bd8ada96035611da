package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThrowLevel(t *testing.T) {
	cases := map[string]ThrowLevel{
		"":        ThrowError,
		"error":   ThrowError,
		"warn":    ThrowWarn,
		"warning": ThrowWarn,
		"info":    ThrowInfo,
		"never":   ThrowNever,
	}
	for in, want := range cases {
		got, err := ParseThrowLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseThrowLevel("fatal")
	assert.Error(t, err)
}

func TestThrowLevel_Fails(t *testing.T) {
	warnOnly := NewBag()
	warnOnly.Add(New(SevWarning, RedefinedSingleton, Location{}, "w"))

	withError := NewBag()
	withError.Add(New(SevInfo, MissingOperationID, Location{}, "i"))
	withError.Add(New(SevError, DuplicateIdentity, Location{}, "e"))

	infoOnly := NewBag()
	infoOnly.Add(New(SevInfo, MissingOperationID, Location{}, "i"))

	t.Run("error threshold ignores warnings", func(t *testing.T) {
		assert.False(t, ThrowError.Fails(warnOnly))
		assert.True(t, ThrowError.Fails(withError))
	})

	t.Run("warn threshold fails on warnings", func(t *testing.T) {
		assert.True(t, ThrowWarn.Fails(warnOnly))
		assert.False(t, ThrowWarn.Fails(infoOnly))
	})

	t.Run("info threshold fails on anything", func(t *testing.T) {
		assert.True(t, ThrowInfo.Fails(infoOnly))
		assert.False(t, ThrowInfo.Fails(NewBag()))
	})

	t.Run("never", func(t *testing.T) {
		assert.False(t, ThrowNever.Fails(withError))
	})
}

func TestThrowLevel_Set(t *testing.T) {
	var lvl ThrowLevel
	require.NoError(t, lvl.Set("never"))
	assert.Equal(t, ThrowNever, lvl)
	assert.Equal(t, "never", lvl.String())
	assert.Error(t, lvl.Set("loud"))
	assert.Equal(t, ThrowNever, lvl)
}

func TestAggregateError(t *testing.T) {
	var err error = &AggregateError{
		Threshold: ThrowWarn,
		Diagnostics: []Diagnostic{
			New(SevWarning, RedefinedSingleton, Location{File: "b.go", Line: 2, Column: 1}, "info already defined"),
			New(SevError, UnknownKind, Location{File: "c.go", Line: 9, Column: 1}, `unknown kind "route"`),
		},
	}

	var agg *AggregateError
	require.True(t, errors.As(err, &agg))
	assert.Len(t, agg.Diagnostics, 2)
	assert.Contains(t, err.Error(), `throw level "warn": 1 error(s), 1 warning(s), 0 info`)
	assert.Contains(t, err.Error(), "b.go:2:1: warn RedefinedSingleton: info already defined")
	assert.Contains(t, err.Error(), `c.go:9:1: error UnknownKind: unknown kind "route"`)
}
