package gpt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// scenarioA returns a minimal single-partition descriptor: block_size=512,
// number_of_blocks=2048, one partition. With N=1, partition_entry_blocks =
// ceil(128*1/512) = 1, so first_usable_lba=3 and last_usable_lba=2045; the
// partition below is scoped to exactly that usable range.
func scenarioA() Descriptor {
	return Descriptor{
		BlockSize:      512,
		NumberOfBlocks: 2048,
		DiskGUID:       ZeroGUID,
		Partitions: []Partition{
			{
				PartitionTypeGUID:   ZeroGUID,
				UniquePartitionGUID: ZeroGUID,
				StartingLBA:         3,
				EndingLBA:           2045,
				Attributes:          0,
				PartitionName:       "",
			},
		},
	}
}

func TestBuildScenarioABlobSizes(t *testing.T) {
	data, err := Build(scenarioA())
	require.NoError(t, err)
	require.Len(t, data.Header, 3*512)
	require.Len(t, data.Footer, 2*512)
}

func TestBuildScenarioAProtectiveMBRSignature(t *testing.T) {
	data, err := Build(scenarioA())
	require.NoError(t, err)
	require.Equal(t, byte(0x55), data.Header[510])
	require.Equal(t, byte(0xAA), data.Header[511])
}

func TestBuildScenarioAPrimaryHeaderSignature(t *testing.T) {
	data, err := Build(scenarioA())
	require.NoError(t, err)
	require.Equal(t, "EFI PART", string(data.Header[512:520]))
}

func TestBuildScenarioAPrimaryHeaderFields(t *testing.T) {
	data, err := Build(scenarioA())
	require.NoError(t, err)

	var h header
	require.NoError(t, binary.Read(bytes.NewReader(data.Header[512:512+headerSize]), binary.LittleEndian, &h))

	require.Equal(t, uint64(1), h.MyLBA)
	require.Equal(t, uint64(2047), h.AltLBA)
	require.Equal(t, uint64(3), h.FirstUsableLBA)
	require.Equal(t, uint64(2045), h.LastUsableLBA)
	require.Equal(t, uint64(2), h.PartitionEntryLBA)
}

func TestBuildScenarioAHeaderCRCRoundTrip(t *testing.T) {
	// Zero HeaderCRC32 and recompute; must match what was stored.
	data, err := Build(scenarioA())
	require.NoError(t, err)

	var primary header
	require.NoError(t, binary.Read(bytes.NewReader(data.Header[512:512+headerSize]), binary.LittleEndian, &primary))
	require.Equal(t, crc32Header(primary), primary.HeaderCRC32)

	var backup header
	backupOff := len(data.Footer) - 512
	require.NoError(t, binary.Read(bytes.NewReader(data.Footer[backupOff:backupOff+headerSize]), binary.LittleEndian, &backup))
	require.Equal(t, crc32Header(backup), backup.HeaderCRC32)
}

func TestBuildScenarioAPartitionEntryCRCCoversHeaderAndFooter(t *testing.T) {
	// The entries array at the start of Footer is byte-identical to the
	// one inside Header, and both headers' stored checksum matches a
	// fresh CRC over it.
	data, err := Build(scenarioA())
	require.NoError(t, err)

	entries := data.Header[2*512 : 2*512+partitionEntrySize]
	require.Equal(t, entries, data.Footer[0:partitionEntrySize])

	var primary header
	require.NoError(t, binary.Read(bytes.NewReader(data.Header[512:512+headerSize]), binary.LittleEndian, &primary))
	require.Equal(t, crc32(entries), primary.PartitionEntryArrayCRC32)

	var backup header
	backupOff := len(data.Footer) - 512
	require.NoError(t, binary.Read(bytes.NewReader(data.Footer[backupOff:backupOff+headerSize]), binary.LittleEndian, &backup))
	require.Equal(t, crc32(entries), backup.PartitionEntryArrayCRC32)
}

func TestBuildScenarioAPrimaryAndBackupHeadersMatchExceptLBAFields(t *testing.T) {
	// Everything but the three fields that encode a header's own position
	// (MyLBA/AltLBA/PartitionEntryLBA) and its self-referential checksum
	// must be identical between the primary and backup copies.
	data, err := Build(scenarioA())
	require.NoError(t, err)

	var primary, backup header
	require.NoError(t, binary.Read(bytes.NewReader(data.Header[512:512+headerSize]), binary.LittleEndian, &primary))
	backupOff := len(data.Footer) - 512
	require.NoError(t, binary.Read(bytes.NewReader(data.Footer[backupOff:backupOff+headerSize]), binary.LittleEndian, &backup))

	ignoreOwnPosition := cmp.FilterPath(func(p cmp.Path) bool {
		switch p.Last().String() {
		case ".MyLBA", ".AltLBA", ".PartitionEntryLBA", ".HeaderCRC32":
			return true
		}
		return false
	}, cmp.Ignore())

	if diff := cmp.Diff(primary, backup, cmp.AllowUnexported(header{}), ignoreOwnPosition); diff != "" {
		t.Errorf("primary and backup headers differ beyond position/checksum fields (-primary +backup):\n%s", diff)
	}
}

func TestBuildDeterministic(t *testing.T) {
	d := scenarioA()
	a, err := Build(d)
	require.NoError(t, err)
	b, err := Build(d)
	require.NoError(t, err)
	require.Equal(t, a.Header, b.Header)
	require.Equal(t, a.Footer, b.Footer)
}

func TestBuildRejectsInvalidDescriptorBeforeAnyOutput(t *testing.T) {
	d := scenarioA()
	d.Partitions = nil
	data, err := Build(d)
	require.Error(t, err)
	require.Nil(t, data.Header)
	require.Nil(t, data.Footer)
}

func TestBuildLargeDiskSaturatesMBRSizeInLBA(t *testing.T) {
	// number_of_blocks - 1 > 2^32 - 1 -> protective MBR size_in_lba
	// saturates at 0x0FFFFFFF, not the UEFI-prescribed 0xFFFFFFFF. This
	// is preserved, not "fixed".
	d := Descriptor{
		BlockSize:      512,
		NumberOfBlocks: uint64(1)<<33 + 1,
		Partitions: []Partition{
			{StartingLBA: 34, EndingLBA: 1<<33 - 2},
		},
	}
	data, err := Build(d)
	require.NoError(t, err)

	var m protectiveMBR
	require.NoError(t, binary.Read(bytes.NewReader(data.Header[0:protectiveMBRSize]), binary.LittleEndian, &m))
	require.Equal(t, uint32(0x0FFFFFFF), m.PartitionRecord[0].SizeInLBA)
}
