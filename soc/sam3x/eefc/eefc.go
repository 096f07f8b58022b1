// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package eefc implements a small versioned, CRC-validated key/value store
// on a single reserved flash page, written through the Enhanced Embedded
// Flash Controller (EEFC1, the bank-1 command interface). Every write
// erases and rewrites the whole page; there is no wear-leveling beyond
// "rewrite as rarely as the application allows".
package eefc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// Type tags distinguish how a value's bytes were encoded.
const (
	TagRaw    = 1
	TagString = 2
	TagU32    = 3
	TagBool   = 4
)

const (
	magic      = 0x4545_4B56 // "EEKV"
	formatVersion = 1
	headerSize = 16

	// pageIndex is the EEFC1 page number (relative to bank 1) the
	// command interface addresses; the reserved page is the last page
	// of the bank.
	pageIndex = regs.IFlashBankSize/regs.FlashPageSize - 1

	// ReservedPageAddr is the absolute address of the reserved page,
	// derived from pageIndex so the address and the page number the EWP
	// command addresses cannot disagree. A linker script must forbid
	// code placement here and move together with pageIndex.
	ReservedPageAddr = regs.IFlashBank1Base + pageIndex*regs.FlashPageSize

	// PageSize is the flash page size in bytes.
	PageSize = regs.FlashPageSize

	// PayloadCapacity is the maximum total size of encoded entries the
	// page can hold.
	PayloadCapacity = PageSize - headerSize

	waitFRDYIters  = 5000000
	waitEWPIters   = 20000000
)

// Errors returned by Load, Save, and Remove.
var (
	ErrEmpty              = errors.New("eefc: store is empty")
	ErrBadMagic           = errors.New("eefc: bad magic")
	ErrUnsupportedVersion = errors.New("eefc: unsupported format version")
	ErrCorruptHeader      = errors.New("eefc: corrupt header")
	ErrCorruptPayload     = errors.New("eefc: corrupt payload")
	ErrCRCMismatch        = errors.New("eefc: crc mismatch")
	ErrKeyNotFound        = errors.New("eefc: key not found")
	ErrInvalidKey         = errors.New("eefc: invalid key")
	ErrValueTooLarge      = errors.New("eefc: value too large")
	ErrTimeout            = errors.New("eefc: flash controller timeout")
	ErrCommandError       = errors.New("eefc: flash command error")
	ErrLockError          = errors.New("eefc: flash region locked")
	ErrUTF8Mismatch       = errors.New("eefc: value is not valid UTF-8")
)

// ErrNoRoom reports that appending an entry would exceed PayloadCapacity.
// Missing is how many bytes over capacity the new payload would be.
type ErrNoRoom struct {
	Missing int
}

func (e *ErrNoRoom) Error() string {
	return fmt.Sprintf("eefc: no room, %d bytes over capacity", e.Missing)
}

func validateKey(key string) error {
	if len(key) == 0 || len(key) > 255 {
		return ErrInvalidKey
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return ErrInvalidKey
		}
	}
	return nil
}

// entry is a single decoded {key, type_tag, value} record.
type entry struct {
	key   string
	tag   uint8
	value []byte
}

func encodeEntry(key string, tag uint8, value []byte) []byte {
	buf := make([]byte, 4+len(key)+len(value))
	buf[0] = byte(len(key))
	buf[1] = tag
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(value)))
	copy(buf[4:], key)
	copy(buf[4+len(key):], value)
	return buf
}

// decodeEntries parses payload into its entries, returning ErrCorruptPayload
// if any entry's length fields run past the end of the slice.
func decodeEntries(payload []byte) ([]entry, error) {
	var entries []entry
	off := 0

	for off < len(payload) {
		if off+4 > len(payload) {
			return nil, ErrCorruptPayload
		}
		keyLen := int(payload[off])
		tag := payload[off+1]
		valueLen := int(binary.LittleEndian.Uint16(payload[off+2 : off+4]))

		start := off + 4
		end := start + keyLen + valueLen
		if end > len(payload) {
			return nil, ErrCorruptPayload
		}

		key := string(payload[start : start+keyLen])
		value := payload[start+keyLen : end]
		entries = append(entries, entry{key: key, tag: tag, value: value})

		off = end
	}

	return entries, nil
}

// removeEntry returns payload's entries re-encoded with any entry matching
// key dropped, and whether one was found.
func removeEntry(payload []byte, key string) ([]byte, bool, error) {
	entries, err := decodeEntries(payload)
	if err != nil {
		return nil, false, err
	}

	out := make([]byte, 0, len(payload))
	found := false
	for _, e := range entries {
		if e.key == key {
			found = true
			continue
		}
		out = append(out, encodeEntry(e.key, e.tag, e.value)...)
	}

	return out, found, nil
}

// readPage loads the raw 256-byte page image. Flash is directly
// memory-mapped and readable with ordinary loads.
func readPage() [PageSize]byte {
	var page [PageSize]byte
	for i := 0; i < PageSize; i += 4 {
		w := reg.Read(uint32(ReservedPageAddr + i))
		binary.LittleEndian.PutUint32(page[i:i+4], w)
	}
	return page
}

// loadPayload reads the current page and returns its validated payload
// slice, classifying header-level failures per §4.9.
func loadPayload() ([]byte, error) {
	page := readPage()

	m := binary.LittleEndian.Uint32(page[0:4])
	if m == 0xFFFFFFFF {
		return nil, ErrEmpty
	}
	if m != magic {
		return nil, ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(page[4:8])
	if version != formatVersion {
		return nil, ErrUnsupportedVersion
	}

	payloadLen := binary.LittleEndian.Uint32(page[8:12])
	if payloadLen > PayloadCapacity {
		return nil, ErrCorruptHeader
	}

	storedCRC := binary.LittleEndian.Uint32(page[12:16])
	payload := page[headerSize : headerSize+int(payloadLen)]

	if crc32IEEE(payload) != storedCRC {
		return nil, ErrCRCMismatch
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// loadPayloadOrEmpty treats ErrEmpty and ErrBadMagic as "nothing stored
// yet" for write paths (save, remove), per §4.9's save contract;
// any other header-level failure is a real corruption and is propagated.
func loadPayloadOrEmpty() ([]byte, error) {
	payload, err := loadPayload()
	switch err {
	case nil:
		return payload, nil
	case ErrEmpty, ErrBadMagic:
		return nil, nil
	default:
		return nil, err
	}
}

// Load reads key's stored value and type tag.
func Load(key string) ([]byte, uint8, error) {
	if err := validateKey(key); err != nil {
		return nil, 0, err
	}

	payload, err := loadPayload()
	if err != nil {
		return nil, 0, err
	}

	entries, err := decodeEntries(payload)
	if err != nil {
		return nil, 0, err
	}

	for _, e := range entries {
		if e.key == key {
			return e.value, e.tag, nil
		}
	}

	return nil, 0, ErrKeyNotFound
}

// Save writes key/value with the given type tag, replacing any existing
// entry for key.
func Save(key string, value []byte, tag uint8) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) > 65535 {
		return ErrValueTooLarge
	}

	payload, err := loadPayloadOrEmpty()
	if err != nil {
		return err
	}

	payload, _, err = removeEntry(payload, key)
	if err != nil {
		return err
	}

	newPayload := append(payload, encodeEntry(key, tag, value)...)
	if len(newPayload) > PayloadCapacity {
		return &ErrNoRoom{Missing: len(newPayload) - PayloadCapacity}
	}

	return writePayload(newPayload)
}

// Remove deletes key's entry, if present.
func Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	payload, err := loadPayloadOrEmpty()
	if err != nil {
		return err
	}

	newPayload, found, err := removeEntry(payload, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrKeyNotFound
	}

	return writePayload(newPayload)
}

// Clear erases all entries, leaving a valid empty store.
func Clear() error {
	return writePayload(nil)
}

// Contains reports whether key has a stored entry.
func Contains(key string) bool {
	_, _, err := Load(key)
	return err == nil
}

// Iterate calls f once per stored entry in on-flash order, stopping early
// if f returns false. An empty or never-written store yields zero calls
// and a nil error; a genuinely corrupt store returns the classifying
// error instead of calling f at all.
func Iterate(f func(key string, tag uint8, value []byte) bool) error {
	payload, err := loadPayload()
	if err == ErrEmpty || err == ErrBadMagic {
		return nil
	}
	if err != nil {
		return err
	}

	entries, err := decodeEntries(payload)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if !f(e.key, e.tag, e.value) {
			break
		}
	}

	return nil
}

// writePayload erases and rewrites the reserved page with a fresh image
// built from payload, per §4.9 steps 1-8.
func writePayload(payload []byte) error {
	if len(payload) > PayloadCapacity {
		return &ErrNoRoom{Missing: len(payload) - PayloadCapacity}
	}

	if !reg.WaitBitSet(regs.EEFC1Base+regs.EEFCFSR, regs.EEFCFSRFRDY, waitFRDYIters) {
		log.Printf("eefc: timeout waiting for FRDY before write")
		return ErrTimeout
	}

	var image [PageSize]byte
	for i := range image {
		image[i] = 0xFF
	}
	binary.LittleEndian.PutUint32(image[0:4], magic)
	binary.LittleEndian.PutUint32(image[4:8], formatVersion)
	binary.LittleEndian.PutUint32(image[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(image[12:16], crc32IEEE(payload))
	copy(image[headerSize:], payload)

	for i := 0; i < PageSize; i += 4 {
		w := binary.LittleEndian.Uint32(image[i : i+4])
		reg.Write(uint32(ReservedPageAddr+i), w)
	}

	reg.Dsb()
	reg.Isb()

	farg := uint32(pageIndex&regs.EEFCFCRFARGMask) << regs.EEFCFCRFARGPos
	reg.Write(regs.EEFC1Base+regs.EEFCFCR, regs.EEFCFCRFKEY|farg|regs.EEFCFCRFCMDEWP)

	if !reg.WaitBitSet(regs.EEFC1Base+regs.EEFCFSR, regs.EEFCFSRFRDY, waitEWPIters) {
		log.Printf("eefc: timeout waiting for FRDY after EWP command")
		return ErrTimeout
	}

	fsr := reg.Read(regs.EEFC1Base + regs.EEFCFSR)
	switch {
	case fsr&regs.EEFCFSRFCMDE != 0:
		log.Printf("eefc: command error, FSR=0x%08x", fsr)
		return ErrCommandError
	case fsr&regs.EEFCFSRFLOCKE != 0:
		log.Printf("eefc: region locked, FSR=0x%08x", fsr)
		return ErrLockError
	default:
		return nil
	}
}

// SaveString stores s as a UTF-8 string entry.
func SaveString(key, s string) error {
	return Save(key, []byte(s), TagString)
}

// LoadString reads a string entry, rejecting stored bytes that are not
// valid UTF-8 rather than silently returning a mismatched value.
func LoadString(key string) (string, error) {
	value, _, err := Load(key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(value) {
		return "", ErrUTF8Mismatch
	}
	return string(value), nil
}

// SaveU32 stores v as a 4-byte little-endian integer entry.
func SaveU32(key string, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return Save(key, buf, TagU32)
}

// LoadU32 reads a 4-byte little-endian integer entry.
func LoadU32(key string) (uint32, error) {
	value, _, err := Load(key)
	if err != nil {
		return 0, err
	}
	if len(value) != 4 {
		return 0, ErrCorruptPayload
	}
	return binary.LittleEndian.Uint32(value), nil
}

// SaveBool stores v as a single-byte boolean entry.
func SaveBool(key string, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return Save(key, []byte{b}, TagBool)
}

// LoadBool reads a single-byte boolean entry.
func LoadBool(key string) (bool, error) {
	value, _, err := Load(key)
	if err != nil {
		return false, err
	}
	if len(value) != 1 {
		return false, ErrCorruptPayload
	}
	return value[0] != 0, nil
}
