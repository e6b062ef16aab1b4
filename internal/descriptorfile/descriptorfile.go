// Package descriptorfile loads a gpt.Descriptor from a JSON document. It
// is not part of the core: the core package never imports it, and it
// never calls the core's validation or byte-assembly logic, only uses its
// gpt.Descriptor, gpt.Partition and gpt.GUID types.
package descriptorfile

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jonesinator/mkgpt"
)

// document mirrors the on-disk JSON descriptor shape.
type document struct {
	BlockSize      uint64        `json:"block_size"`
	NumberOfBlocks uint64        `json:"number_of_blocks"`
	DiskGUID       string        `json:"disk_guid"`
	Partitions     []partitionJS `json:"partitions"`
}

type partitionJS struct {
	PartitionTypeGUID   string `json:"partition_type_guid"`
	UniquePartitionGUID string `json:"unique_partition_guid"`
	StartingLBA         uint64 `json:"starting_lba"`
	EndingLBA           uint64 `json:"ending_lba"`
	Attributes          uint64 `json:"attributes"`
	PartitionName       string `json:"partition_name"`
}

// maxPartitionNameUnits is the wire width of a partition_name field in
// UTF-16 code units (72 bytes / 2 bytes per code unit).
const maxPartitionNameUnits = 36

// Parse decodes raw as a descriptor document and converts it to a
// gpt.Descriptor. GUID text is parsed with uuid.Parse, which rejects
// malformed input outright rather than continuing past a bad hex digit.
// Partition names are measured in UTF-16 code units (correctly counting
// surrogate pairs as two units each) and rejected here, before the core
// ever sees them, if they exceed 36 units. An empty partitions array
// parses successfully; gpt.Descriptor.Validate is what rejects it.
func Parse(raw []byte) (gpt.Descriptor, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return gpt.Descriptor{}, errors.Wrap(err, "descriptorfile: decoding JSON")
	}

	diskGUID, err := parseGUID(doc.DiskGUID)
	if err != nil {
		return gpt.Descriptor{}, errors.Wrap(err, "descriptorfile: disk_guid")
	}

	partitions := make([]gpt.Partition, 0, len(doc.Partitions))
	for i, p := range doc.Partitions {
		typeGUID, err := parseGUID(p.PartitionTypeGUID)
		if err != nil {
			return gpt.Descriptor{}, errors.Wrapf(err, "descriptorfile: partitions[%d].partition_type_guid", i)
		}
		uniqueGUID, err := parseGUID(p.UniquePartitionGUID)
		if err != nil {
			return gpt.Descriptor{}, errors.Wrapf(err, "descriptorfile: partitions[%d].unique_partition_guid", i)
		}
		if units := utf16Len(p.PartitionName); units > maxPartitionNameUnits {
			return gpt.Descriptor{}, errors.Errorf(
				"descriptorfile: partitions[%d].partition_name is %d UTF-16 code units, exceeds the maximum of %d",
				i, units, maxPartitionNameUnits)
		}

		partitions = append(partitions, gpt.Partition{
			PartitionTypeGUID:   typeGUID,
			UniquePartitionGUID: uniqueGUID,
			StartingLBA:         p.StartingLBA,
			EndingLBA:           p.EndingLBA,
			Attributes:          p.Attributes,
			PartitionName:       p.PartitionName,
		})
	}

	return gpt.Descriptor{
		BlockSize:      doc.BlockSize,
		NumberOfBlocks: doc.NumberOfBlocks,
		DiskGUID:       diskGUID,
		Partitions:     partitions,
	}, nil
}

// parseGUID converts the eight-four-four-four-twelve dashed hex form into
// the core's raw wire-order 16-byte gpt.GUID. Each pair of hex digits
// becomes one byte in the order the text spells it out, left to right,
// with no field-reordering; uuid.UUID already stores bytes that way.
func parseGUID(s string) (gpt.GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return gpt.GUID{}, fmt.Errorf("invalid GUID %q: %w", s, err)
	}
	var g gpt.GUID
	copy(g[:], u[:])
	return g, nil
}

// utf16Len counts the UTF-16 code units s would decode to, counting each
// surrogate pair (any code point above U+FFFF) as two units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}
