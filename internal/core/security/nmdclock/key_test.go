package nmdclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeKey_Empty(t *testing.T) {
	assert.Equal(t, "", MakeKey(""))
}

func TestMakeKey_Deterministic(t *testing.T) {
	lock, _ := GenerateLock()
	k1 := MakeKey(lock)
	k2 := MakeKey(lock)
	assert.Equal(t, k1, k2)
	assert.NotEmpty(t, k1)
}

func TestMakeKey_DifferentLocksDifferentKeys(t *testing.T) {
	lockA, _ := GenerateLock()
	lockB, _ := GenerateLock()
	assert.NotEqual(t, MakeKey(lockA), MakeKey(lockB))
}

func TestIsExtendedProtocol(t *testing.T) {
	lock, _ := GenerateLock()
	assert.True(t, IsExtendedProtocol(lock))
	assert.False(t, IsExtendedProtocol("PLAINLOCKNOMARKER"))
}

func TestFormatLockLine(t *testing.T) {
	assert.Equal(t, "$Lock ABC Pk=pk", FormatLockLine("ABC", "pk", ""))
	assert.Equal(t, "$Lock ABC Pk=pkRef=dchub://example", FormatLockLine("ABC", "pk", "dchub://example"))
}
