package voice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chekinn/audio"
)

func TestDeviceGateGrantsOnWorkingDevice(t *testing.T) {
	gate := NewDeviceGate(&audio.FakeContext{})
	assert.Equal(t, PermissionUndetermined, gate.Status())

	status, err := gate.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, status)
	assert.Equal(t, PermissionGranted, gate.Status())
}

func TestDeviceGateDeniesOnOpenFailure(t *testing.T) {
	gate := NewDeviceGate(&audio.FakeContext{CaptureErr: errors.New("access denied")})

	status, err := gate.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, status)
	assert.Equal(t, PermissionDenied, gate.Status())
}

func TestDeviceGateCoalescesConcurrentRequests(t *testing.T) {
	gate := NewDeviceGate(&audio.FakeContext{})

	const n = 8
	results := make([]PermissionStatus, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, err := gate.Request(context.Background())
			assert.NoError(t, err)
			results[i] = status
		}(i)
	}
	wg.Wait()

	for _, status := range results {
		assert.Equal(t, PermissionGranted, status)
	}
}

func TestPermissionStatusString(t *testing.T) {
	assert.Equal(t, "undetermined", PermissionUndetermined.String())
	assert.Equal(t, "granted", PermissionGranted.String())
	assert.Equal(t, "denied", PermissionDenied.String())
}
