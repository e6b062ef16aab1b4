package gpt

import (
	"bytes"
	"encoding/binary"
)

// blockSize512 is the minimum and most common logical block size. Larger,
// 512-multiple block sizes are supported by the builder; the record
// layouts below are fixed regardless of block size.
const blockSize512 = 512

func init() {
	// UEFI 2.8 §5 fixes every multi-byte field on the wire as
	// little-endian. Record layout below is written field-by-field with
	// explicit binary.LittleEndian, which is endian-correct on any host,
	// but an accidental reinterpret-cast elsewhere in a future change
	// would not be; this check catches that class of host exactly once,
	// at package load.
	if binary.NativeEndian.String() != "LittleEndian" {
		panic(HostUnsupportedError{})
	}
}

// mbrPartitionRecord is one of the four 16-byte partition records in a
// protective MBR (UEFI 2.8 Table 19, inner record).
type mbrPartitionRecord struct {
	BootIndicator byte
	StartingCHS   [3]byte
	OSType        byte
	EndingCHS     [3]byte
	StartingLBA   uint32
	SizeInLBA     uint32
}

// protectiveMBR is the 512-byte protective MBR (UEFI 2.8 Table 19).
type protectiveMBR struct {
	BootCode               [440]byte
	UniqueMBRDiskSignature uint32
	Unknown                uint16
	PartitionRecord        [4]mbrPartitionRecord
	Signature              [2]byte
}

const protectiveMBRSize = 512

// marshal serializes m to its fixed 512-byte little-endian wire form.
func (m protectiveMBR) marshal() []byte {
	var buf bytes.Buffer
	buf.Grow(protectiveMBRSize)
	if err := binary.Write(&buf, binary.LittleEndian, m); err != nil {
		panic(err) // unreachable: every field is fixed-size
	}
	if buf.Len() != protectiveMBRSize {
		panic("gpt: protectiveMBR marshaled to unexpected size")
	}
	return buf.Bytes()
}

// header is a GPT header (UEFI 2.8 Table 21), 92 bytes, little-endian.
// Both the primary and the backup header use this same layout.
type header struct {
	Signature                [8]byte
	Revision                 uint32
	HeaderSize               uint32
	HeaderCRC32              uint32
	Reserved                 uint32
	MyLBA                    uint64
	AltLBA                   uint64
	FirstUsableLBA           uint64
	LastUsableLBA            uint64
	DiskGUID                 GUID
	PartitionEntryLBA        uint64
	NumberOfPartitionEntries uint32
	SizeOfPartitionEntry     uint32
	PartitionEntryArrayCRC32 uint32
}

const headerSize = 92

var gptSignature = [8]byte{'E', 'F', 'I', ' ', 'P', 'A', 'R', 'T'}
var gptRevision uint32 = 0x00010000

// marshal serializes h to its fixed 92-byte little-endian wire form. It
// does not zero HeaderCRC32 first; callers compute the self-referential
// checksum via crc32Header before calling marshal a final time.
func (h header) marshal() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		panic(err)
	}
	if buf.Len() != headerSize {
		panic("gpt: header marshaled to unexpected size")
	}
	return buf.Bytes()
}

// crc32Header computes a GPT header's self-referential HeaderCRC32: zero
// the field, serialize the 92 bytes, CRC them, and return the result. The
// caller stores it back into HeaderCRC32 before the header is placed into
// an output blob. Padding in the containing block is never included.
func crc32Header(h header) uint32 {
	h.HeaderCRC32 = 0
	return crc32(h.marshal())
}

// partitionEntry is one 128-byte partition entry (UEFI 2.8 Table 22).
type partitionEntry struct {
	PartitionTypeGUID   GUID
	UniquePartitionGUID GUID
	StartingLBA         uint64
	EndingLBA           uint64
	Attributes          uint64
	PartitionName       [36]uint16
}

const partitionEntrySize = 128

// marshal serializes e to its fixed 128-byte little-endian wire form.
func (e partitionEntry) marshal() []byte {
	var buf bytes.Buffer
	buf.Grow(partitionEntrySize)
	if err := binary.Write(&buf, binary.LittleEndian, e); err != nil {
		panic(err)
	}
	if buf.Len() != partitionEntrySize {
		panic("gpt: partitionEntry marshaled to unexpected size")
	}
	return buf.Bytes()
}
