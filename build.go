// Package gpt synthesizes the raw bytes of a GUID Partition Table disk
// image per UEFI Specification 2.8, §5. It is a pure, synchronous,
// single-threaded computation: Build consumes a Descriptor and returns two
// byte blobs, performing no I/O and touching no shared state.
package gpt

import (
	"unicode/utf16"
)

// Data holds the two byte blobs a valid GPT layout is made of. Header is
// written at offset 0 of the target device; Footer is written at offset
// (device size in bytes) - len(Footer). Everything between them is the
// caller's concern (partition content), which this package never touches.
type Data struct {
	Header []byte
	Footer []byte
}

// Build validates descriptor and, if it passes every rule, assembles the
// protective MBR, the primary and backup GPT headers, and the primary and
// backup partition entry arrays into the two blobs described by Data. It
// returns an InvalidDescriptorError without producing any output if
// validation fails.
func Build(d Descriptor) (Data, error) {
	if err := d.Validate(); err != nil {
		return Data{}, err
	}

	entryBlocks := partitionEntryBlocks(d.BlockSize, len(d.Partitions))
	firstUsable := 2 + entryBlocks
	lastUsable := d.NumberOfBlocks - entryBlocks - 2

	// entries is exactly 128*N bytes: the checksummed region. The zero
	// padding out to a full entryBlocks*blockSize span is added only
	// when entries is copied into the pre-zeroed output blobs below, so
	// it never contaminates the CRC.
	entries := serializePartitions(d.Partitions)
	entriesCRC := crc32(entries)

	mbr := buildProtectiveMBR(d.NumberOfBlocks)

	primary := header{
		Signature:                gptSignature,
		Revision:                 gptRevision,
		HeaderSize:               headerSize,
		Reserved:                 0,
		MyLBA:                    1,
		AltLBA:                   d.NumberOfBlocks - 1,
		FirstUsableLBA:           firstUsable,
		LastUsableLBA:            lastUsable,
		DiskGUID:                 d.DiskGUID,
		PartitionEntryLBA:        2,
		NumberOfPartitionEntries: uint32(len(d.Partitions)),
		SizeOfPartitionEntry:     partitionEntrySize,
		PartitionEntryArrayCRC32: entriesCRC,
	}
	primary.HeaderCRC32 = crc32Header(primary)

	backup := header{
		Signature:                gptSignature,
		Revision:                 gptRevision,
		HeaderSize:               headerSize,
		Reserved:                 0,
		MyLBA:                    d.NumberOfBlocks - 1,
		AltLBA:                   1,
		FirstUsableLBA:           firstUsable,
		LastUsableLBA:            lastUsable,
		DiskGUID:                 d.DiskGUID,
		PartitionEntryLBA:        d.NumberOfBlocks - 1 - entryBlocks,
		NumberOfPartitionEntries: uint32(len(d.Partitions)),
		SizeOfPartitionEntry:     partitionEntrySize,
		PartitionEntryArrayCRC32: entriesCRC,
	}
	backup.HeaderCRC32 = crc32Header(backup)

	headerBlob := make([]byte, (2+entryBlocks)*d.BlockSize)
	copy(headerBlob[0:], mbr.marshal())
	copy(headerBlob[d.BlockSize:], primary.marshal())
	copy(headerBlob[2*d.BlockSize:], entries)

	footerBlob := make([]byte, (1+entryBlocks)*d.BlockSize)
	copy(footerBlob[0:], entries)
	copy(footerBlob[entryBlocks*d.BlockSize:], backup.marshal())

	return Data{Header: headerBlob, Footer: footerBlob}, nil
}

// buildProtectiveMBR assembles the single 512-byte protective MBR. Only
// the first of its four partition records is populated; the other three,
// and the 440-byte boot code region, stay zero.
func buildProtectiveMBR(numberOfBlocks uint64) protectiveMBR {
	var m protectiveMBR

	sizeInLBA := uint32(0x0FFFFFFF)
	if span := numberOfBlocks - 1; span <= 0xFFFFFFFF {
		sizeInLBA = uint32(span)
	}

	m.PartitionRecord[0] = mbrPartitionRecord{
		BootIndicator: 0,
		StartingCHS:   [3]byte{0x00, 0x02, 0x00},
		OSType:        0xEE,
		// UEFI 2.8 prescribes a CHS value derived from disk geometry;
		// this preserves the all-0xFF placeholder instead, a known
		// TODO rather than a computed value.
		EndingCHS:   [3]byte{0xFF, 0xFF, 0xFF},
		StartingLBA: 1,
		SizeInLBA:   sizeInLBA,
	}
	m.Signature = [2]byte{0x55, 0xAA}
	return m
}

// serializePartitions packs partitions into a tightly-packed 128*N byte
// array with no padding; this is the exact span the partition entry
// checksum covers.
func serializePartitions(partitions []Partition) []byte {
	out := make([]byte, partitionEntrySize*len(partitions))
	for i, p := range partitions {
		e := partitionEntry{
			PartitionTypeGUID:   p.PartitionTypeGUID,
			UniquePartitionGUID: p.UniquePartitionGUID,
			StartingLBA:         p.StartingLBA,
			EndingLBA:           p.EndingLBA,
			Attributes:          p.Attributes,
			PartitionName:       encodePartitionName(p.PartitionName),
		}
		copy(out[i*partitionEntrySize:], e.marshal())
	}
	return out
}

// encodePartitionName converts s to UTF-16 code units, zero-padded to 36
// entries. Names that encode to more than 36 code units are truncated;
// rejecting them is a descriptor loader's job, not the builder's.
func encodePartitionName(s string) [36]uint16 {
	var name [36]uint16
	units := utf16.Encode([]rune(s))
	copy(name[:], units)
	return name
}
