package eefc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32MatchesKnownCheckValue(t *testing.T) {
	// "123456789" is the standard CRC-32/ISO-HDLC check vector.
	assert.Equal(t, uint32(0xCBF43926), crc32IEEE([]byte("123456789")))
}

func TestCRC32OfEmptyPayloadIsInitXorFinalXor(t *testing.T) {
	assert.Equal(t, uint32(0), crc32IEEE(nil))
}

func TestValidateKeyAcceptsAllowedCharset(t *testing.T) {
	assert.NoError(t, validateKey("wifi.ssid-1_A"))
}

func TestValidateKeyRejectsDisallowedCharacters(t *testing.T) {
	assert.ErrorIs(t, validateKey("bad key!"), ErrInvalidKey)
}

func TestValidateKeyRejectsEmpty(t *testing.T) {
	assert.ErrorIs(t, validateKey(""), ErrInvalidKey)
}

func TestValidateKeyRejectsOverlong(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, validateKey(string(long)), ErrInvalidKey)
}

func TestEncodeDecodeEntryRoundTrips(t *testing.T) {
	buf := encodeEntry("ssid", TagString, []byte("myrouter"))

	entries, err := decodeEntries(buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "ssid", entries[0].key)
	assert.Equal(t, uint8(TagString), entries[0].tag)
	assert.Equal(t, []byte("myrouter"), entries[0].value)
}

func TestDecodeEntriesHandlesMultipleEntries(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeEntry("a", TagU32, []byte{1, 0, 0, 0})...)
	buf = append(buf, encodeEntry("b", TagBool, []byte{1})...)

	entries, err := decodeEntries(buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].key)
	assert.Equal(t, "b", entries[1].key)
}

func TestDecodeEntriesRejectsTruncatedBuffer(t *testing.T) {
	buf := encodeEntry("k", TagRaw, []byte{1, 2, 3})
	_, err := decodeEntries(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

func TestRemoveEntryDropsMatchAndKeepsOrder(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeEntry("a", TagRaw, []byte{1})...)
	buf = append(buf, encodeEntry("b", TagRaw, []byte{2})...)
	buf = append(buf, encodeEntry("c", TagRaw, []byte{3})...)

	out, found, err := removeEntry(buf, "b")
	require.NoError(t, err)
	require.True(t, found)

	entries, err := decodeEntries(out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].key)
	assert.Equal(t, "c", entries[1].key)
}

func TestRemoveEntryReportsNotFound(t *testing.T) {
	buf := encodeEntry("a", TagRaw, []byte{1})

	_, found, err := removeEntry(buf, "z")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReservedPageAddrIsLastPageOfBank1(t *testing.T) {
	assert.Equal(t, 0x000FFF00, ReservedPageAddr)
	assert.Equal(t, 1023, pageIndex)
}

func TestPayloadCapacityIsPageMinusHeader(t *testing.T) {
	assert.Equal(t, PageSize-16, PayloadCapacity)
}

func TestSaveCapacityCheckReportsExactOverflow(t *testing.T) {
	// Mirrors Save's own arithmetic (append the new entry, compare
	// against PayloadCapacity) without touching loadPayloadOrEmpty or
	// writePayload, which dereference the real flash page address.
	existing := make([]byte, PayloadCapacity-4)
	entry := encodeEntry("toolong", TagRaw, make([]byte, 64))

	newPayload := append(existing, entry...)
	overflow := len(newPayload) - PayloadCapacity
	require.Greater(t, overflow, 0)

	err := &ErrNoRoom{Missing: overflow}
	assert.Equal(t, overflow, err.Missing)
	assert.Equal(t, len(existing)+len(entry)-PayloadCapacity, err.Missing)
}

func TestSaveCapacityCheckAllowsExactFit(t *testing.T) {
	entry := encodeEntry("k", TagRaw, make([]byte, 10))
	existing := make([]byte, PayloadCapacity-len(entry))

	newPayload := append(existing, entry...)
	assert.Equal(t, PayloadCapacity, len(newPayload))
	assert.False(t, len(newPayload) > PayloadCapacity)
}
