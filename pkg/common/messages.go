// Package common provides logging helpers, message constants and small
// utilities shared by the disk engine, the processors and the commands.
package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenDisk        = "failed to open disk image"
	ErrFailedToReadDirectory   = "failed to read directory"
	ErrFailedToReadDirEntry    = "failed to read directory entry"
	ErrFailedToReadFile        = "failed to read file chain"
	ErrFailedToWalkChain       = "failed to walk sector chain"
	ErrFailedToCreateOutputDir = "failed to create output directory"
	ErrFailedToWriteFile       = "failed to write file"
	ErrFailedToWriteManifest   = "failed to write manifest"
	ErrFailedToReadManifest    = "failed to read manifest"
	ErrFailedToParseYAML       = "failed to parse YAML"
	ErrFailedToWriteListing    = "failed to write listing"
	ErrFailedToConvertImage    = "failed to convert disk image"
	ErrInvalidMagic            = "invalid signature"
)

// Info messages
const (
	InfoDiskLoaded      = "Loaded %s as %s (%s)"
	InfoDirectoryRead   = "Directory of %q: %d slots in %d sectors, %d files"
	InfoFileExtracted   = "Extracted %s (%s, %d bytes) -> %s"
	InfoFilesExtracted  = "Extracted %d files to: %s"
	InfoManifestWritten = "Manifest written: %s"
	InfoImageConverted  = "Converted %s (%s) -> %s (%d bytes)"
	InfoChainWalked     = "Chain from %s: %d sectors, %d bytes"
)

// Debug messages
const (
	DebugFormatRejected = "Rejected %s (%d bytes): %v"
	DebugDirEntry       = "Slot %s/%d: %s"
	DebugSkippedEntry   = "Skipping slot %s/%d: %s"
	DebugChainStep      = "Chain step %d: %s"
	DebugLoadAddress    = "%s loads at $%04X"
)

// Warning messages
const (
	WarnUnusualImageSize    = "%s has a non-standard size of %d bytes, reading it as a D64 sector dump"
	WarnBadDirectoryPointer = "Header directory pointer %s is invalid, starting at %s"
	WarnBlockCountMismatch  = "%s: directory says %d blocks, chain has %d"
	WarnFileUnreadable      = "Skipping %s: %v"
	WarnSoftWriteProtected  = "Disk %q is soft write protected (DOS version $%02X)"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
