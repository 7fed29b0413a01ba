package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/kvc/internal/errs"
)

func TestKindMatching(t *testing.T) {
	err := errs.E(errs.ErrNotFound, "get commit", "abc123")
	wrapped := fmt.Errorf("log: %w", err)

	assert.ErrorIs(t, wrapped, errs.ErrNotFound)
	assert.NotErrorIs(t, wrapped, errs.ErrAlreadyExists)
	assert.Equal(t, errs.ErrNotFound, errs.KindOf(wrapped))
	assert.Equal(t, `get commit: not found "abc123"`, err.Error())
}

func TestKindInheritedFromCause(t *testing.T) {
	inner := errs.E(errs.ErrCorruptSnapshot, "load manifest", "deadbeef")
	outer := errs.E("checkout", "main", inner)

	assert.ErrorIs(t, outer, errs.ErrCorruptSnapshot)
	assert.True(t, errs.Fatal(outer))
	assert.False(t, errs.Retryable(outer))
}

func TestRetryableOnlyForLock(t *testing.T) {
	assert.True(t, errs.Retryable(errs.E(errs.ErrVaultLocked, "lock", ".kvc/lock")))
	assert.False(t, errs.Retryable(errors.New("plain")))
	assert.Nil(t, errs.KindOf(errors.New("plain")))
}

func TestWithHead(t *testing.T) {
	err := errs.E(errs.ErrDirtyState, "checkout", "feature").WithHead("main")
	assert.Contains(t, err.Error(), "(HEAD main)")
}
