// Package imagewriter places a built gpt.Data's Header and Footer blobs
// into a disk image file: Header at offset 0, Footer at offset
// size-len(Footer), with everything in between left as whatever the
// filesystem gives back for a freshly sized file (normally zero).
package imagewriter

import (
	stderrors "errors"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/jonesinator/mkgpt"
)

// WriteFile sizes path to blockSize*numberOfBlocks bytes and writes data's
// two blobs at their fixed offsets. The file is created if absent and
// truncated to exactly the target size otherwise; any existing content
// between the header and footer regions is discarded.
func WriteFile(path string, blockSize, numberOfBlocks uint64, data gpt.Data) error {
	size := int64(blockSize * numberOfBlocks)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "imagewriter: opening %s", path)
	}
	defer f.Close()

	if err := sizeFile(f, size); err != nil {
		return errors.Wrapf(err, "imagewriter: sizing %s to %d bytes", path, size)
	}

	logrus.WithFields(logrus.Fields{
		"path":        path,
		"size":        size,
		"header_size": len(data.Header),
		"footer_size": len(data.Footer),
	}).Debug("imagewriter: writing GPT blobs")

	if _, err := f.WriteAt(data.Header, 0); err != nil {
		return errors.Wrap(err, "imagewriter: writing header")
	}
	footerOffset := size - int64(len(data.Footer))
	if _, err := f.WriteAt(data.Footer, footerOffset); err != nil {
		return errors.Wrap(err, "imagewriter: writing footer")
	}

	return errors.Wrap(f.Sync(), "imagewriter: syncing")
}

// sizeFile allocates size bytes for f. Fallocate avoids leaving the file
// sparse on filesystems that support it; Truncate is the portable
// fallback, used only when the underlying filesystem doesn't implement
// fallocate at all (ENOTSUP, EOPNOTSUPP). Any other Fallocate error
// (ENOSPC, EBADF, ...) is a real failure and is returned as-is rather
// than silently papered over by a Truncate that could spuriously
// succeed and leave a sparse file.
func sizeFile(f *os.File, size int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	if err == nil {
		return nil
	}
	if stderrors.Is(err, unix.ENOTSUP) || stderrors.Is(err, unix.EOPNOTSUPP) {
		logrus.WithError(err).Debug("imagewriter: fallocate unsupported by filesystem, falling back to truncate")
		return f.Truncate(size)
	}
	return err
}
