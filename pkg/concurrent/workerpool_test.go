// Copyright RelayCRM and each contributor.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesAll(t *testing.T) {
	pool := NewWorkerPool(3)
	var counter atomic.Int32

	fns := make([]func() error, 10)
	for i := range fns {
		fns[i] = func() error {
			counter.Add(1)
			return nil
		}
	}

	require.NoError(t, pool.Run(context.Background(), fns...))
	assert.Equal(t, int32(10), counter.Load())
}

func TestRunReturnsFirstError(t *testing.T) {
	pool := NewWorkerPool(1)
	boom := errors.New("boom")

	err := pool.Run(context.Background(),
		func() error { return nil },
		func() error { return boom },
		func() error { return nil },
	)
	assert.ErrorIs(t, err, boom)
}

func TestRunAllCollectsErrorsWithoutCancelling(t *testing.T) {
	pool := NewWorkerPool(2)
	var completed atomic.Int32

	errs := pool.RunAll(context.Background(),
		func() error { completed.Add(1); return errors.New("first") },
		func() error { completed.Add(1); return nil },
		func() error { completed.Add(1); return errors.New("second") },
	)

	assert.Len(t, errs, 2)
	assert.Equal(t, int32(3), completed.Load(), "one failure must not cancel the rest")
}

func TestRunEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	require.NoError(t, pool.Run(context.Background()))
	assert.Nil(t, pool.RunAll(context.Background()))
}

func TestNewWorkerPoolMinimumOfOne(t *testing.T) {
	pool := NewWorkerPool(0)
	require.NoError(t, pool.Run(context.Background(), func() error { return nil }))
}
