// This file contains disk image detection and loading.
package cbm

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/cbmtools/pkg/common"
)

// Signatures and sizes of containers that are detected but not supported
const (
	g64Signature     = "GCR-1541"
	d71Size          = 349696
	d71SizeErrors    = 351062
	d81Size          = 819200
	d81SizeErrors    = 822400
	d64FileExtension = ".d64"
)

// Open reads the image file at path and loads it
func Open(path string) (Disk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return Load(filepath.Base(path), data)
}

// Load selects the disk variant for data by inspecting its signature, size and
// the extension of name. The detection never parses disk contents.
func Load(name string, data []byte) (Disk, error) {
	disk, err := detect(name, data)
	if err != nil {
		common.LogDebug(common.DebugFormatRejected, name, len(data), err)
		return nil, err
	}

	common.LogInfo(common.InfoDiskLoaded, name, disk.Format(), disk.Geometry())
	return disk, nil
}

func detect(name string, data []byte) (Disk, error) {
	switch {
	case bytes.HasPrefix(data, []byte(NibbleCaptureSignature)):
		return newNibbleCapture(name, data)
	case bytes.HasPrefix(data, []byte(g64Signature)):
		return nil, fmt.Errorf("%w: G64 images are not supported", ErrUnrecognizedFormat)
	}

	switch len(data) {
	case D64Size35:
		return newSectorDump(name, FormatD64, D64Geometry35, data), nil
	case D64Size35Errors:
		return newSectorDump(name, FormatD64Errors, D64Geometry35, data), nil
	case D64Size40:
		return newSectorDump(name, FormatD64Extended, D64Geometry40, data), nil
	case D64Size40Errors:
		return newSectorDump(name, FormatD64ExtendedErrors, D64Geometry40, data), nil
	case d71Size, d71SizeErrors:
		return nil, fmt.Errorf("%w: D71 images are not supported", ErrUnrecognizedFormat)
	case d81Size, d81SizeErrors:
		return nil, fmt.Errorf("%w: D81 images are not supported", ErrUnrecognizedFormat)
	}

	if strings.EqualFold(filepath.Ext(name), d64FileExtension) {
		common.LogWarn(common.WarnUnusualImageSize, name, len(data))
		if len(data) > D64Size35Errors {
			return newSectorDump(name, FormatD64Extended, D64Geometry40, data), nil
		}
		return newSectorDump(name, FormatD64, D64Geometry35, data), nil
	}

	return nil, fmt.Errorf("%w: %s (%d bytes)", ErrUnrecognizedFormat, name, len(data))
}
