// This file contains the NIBCAP64 raw capture container.
//
// A capture stores every canonical disk byte as two 4-bit intensity samples
// (high nibble first) behind a 16-byte header:
//
//	0x00  8 bytes  signature "NIBCAP64"
//	0x08  1 byte   track count (35 or 40)
//	0x09  1 byte   samples per byte (always 2)
//	0x0A  6 bytes  reserved
package cbm

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"

	"github.com/hansbonini/cbmtools/pkg/common"
)

const (
	NibbleCaptureSignature  = "NIBCAP64"
	NibbleCaptureHeaderSize = 16
	nibbleSamplesPerByte    = 2
)

type nibbleCaptureHeader struct {
	Signature      [8]byte
	Tracks         uint8
	SamplesPerByte uint8
	Reserved       [6]byte
}

// nibbleCapture is a disk demultiplexed from a raw sample capture
type nibbleCapture struct {
	*image
}

func newNibbleCapture(name string, data []byte) (*nibbleCapture, error) {
	if len(data) < NibbleCaptureHeaderSize {
		return nil, fmt.Errorf("%w: capture header needs %d bytes, got %d", ErrUnrecognizedFormat, NibbleCaptureHeaderSize, len(data))
	}

	var header nibbleCaptureHeader
	if err := restruct.Unpack(data[:NibbleCaptureHeaderSize], binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	if err := common.ValidateMagic(header.Signature[:], NibbleCaptureSignature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}

	var geometry *Geometry
	switch header.Tracks {
	case 35:
		geometry = D64Geometry35
	case 40:
		geometry = D64Geometry40
	default:
		return nil, fmt.Errorf("%w: capture declares %d tracks", ErrUnrecognizedFormat, header.Tracks)
	}
	if header.SamplesPerByte != nibbleSamplesPerByte {
		return nil, fmt.Errorf("%w: capture uses %d samples per byte", ErrUnrecognizedFormat, header.SamplesPerByte)
	}

	body := data[NibbleCaptureHeaderSize:]
	canonical, err := demultiplex(body, geometry.ImageSize())
	if err != nil {
		return nil, err
	}

	return &nibbleCapture{
		image: &image{
			name:     name,
			format:   FormatNibbleCapture,
			geometry: geometry,
			data:     canonical,
		},
	}, nil
}

// demultiplex rebuilds canonical bytes from sample pairs, reading at most limit bytes
func demultiplex(body []byte, limit int) ([]byte, error) {
	count := min(len(body)/nibbleSamplesPerByte, limit)

	hi := make([]byte, count)
	for i := range hi {
		hi[i] = body[i*nibbleSamplesPerByte]
	}
	NormalizeSamples(hi, hi)

	out := make([]byte, count)
	for i := range out {
		lo := body[i*nibbleSamplesPerByte+1]
		if hi[i] == 0xFF || lo > 0x0F {
			return nil, &SampleError{
				Offset: NibbleCaptureHeaderSize + i*nibbleSamplesPerByte,
				Hi:     body[i*nibbleSamplesPerByte],
				Lo:     lo,
			}
		}
		out[i] = hi[i] | lo
	}

	return out, nil
}

// EncodeNibbleCapture wraps a canonical sector dump into a NIBCAP64 capture
func EncodeNibbleCapture(canonical []byte, tracks int) []byte {
	out := make([]byte, NibbleCaptureHeaderSize, NibbleCaptureHeaderSize+len(canonical)*nibbleSamplesPerByte)
	copy(out, NibbleCaptureSignature)
	out[8] = byte(tracks)
	out[9] = nibbleSamplesPerByte

	for _, b := range canonical {
		out = append(out, b>>4, b&0x0F)
	}
	return out
}
