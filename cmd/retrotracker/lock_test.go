package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireInstanceLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrotracker.db.lock")

	first, err := acquireInstanceLock(path)
	require.NoError(t, err)

	_, err = acquireInstanceLock(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another retrotracker instance")

	require.NoError(t, first.Unlock())

	again, err := acquireInstanceLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}
