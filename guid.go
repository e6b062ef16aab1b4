package gpt

import "fmt"

// GUID is a 16-byte identifier, stored exactly as the caller supplies it:
// raw little-endian bytes in wire order. The core never parses or
// constructs a GUID from its textual eight-four-four-four-twelve form;
// that belongs to a descriptor loader, not the builder.
type GUID [16]byte

// ZeroGUID is the all-zero GUID, used by convention to mark an unused
// partition entry slot.
var ZeroGUID GUID

// HumanString returns a short, human-friendly label for well-known
// partition type GUIDs, falling back to the dashed hex form. Diagnostics
// only; never consulted by validation or byte assembly.
func (g GUID) HumanString() string {
	switch guid := g.String(); guid {
	case ZeroGUID.String():
		return "Unused"
	case "C12A7328-F81F-11D2-BA4B-00A0C93EC93B":
		return "EFI System Partition"
	case "0FC63DAF-8483-4772-8E79-3D69D8477DE4":
		return "Linux filesystem data"
	case "0657FD6D-A4AB-43C4-84E5-0933C84B4F4F":
		return "Linux swap"
	case "E3C9E316-0B5C-4DB8-817D-F92DF00215AE":
		return "Microsoft Reserved Partition"
	case "EBD0A0A2-B9E5-4433-87C0-68B6B72699C7":
		return "Microsoft Basic Data"
	default:
		return guid
	}
}

// String renders g in the canonical UEFI mixed-endian dashed hex form: the
// first three fields (time-low, time-mid, time-high-and-version) are
// byte-swapped from wire order for display, the remaining eight bytes are
// printed in stored order.
func (g GUID) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%02X%02X-%X",
		uint32(g[3])<<24|uint32(g[2])<<16|uint32(g[1])<<8|uint32(g[0]),
		uint16(g[5])<<8|uint16(g[4]),
		uint16(g[7])<<8|uint16(g[6]),
		g[8], g[9], g[10:16])
}
