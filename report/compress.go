package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Codec selects how exported tables are compressed.
type Codec string

// The supported codecs.
const (
	CodecNone   Codec = "none"
	CodecSnappy Codec = "snappy"
	CodecLZ4    Codec = "lz4"
)

// ParseCodec validates a codec name.
func ParseCodec(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(name)); c {
	case CodecNone, CodecSnappy, CodecLZ4:
		return c, nil
	case "":
		return CodecNone, nil
	default:
		return "", fmt.Errorf("unknown codec %q", name)
	}
}

// CodecForFile picks a codec from a file extension: ".sz" for snappy and
// ".lz4" for lz4.
func CodecForFile(filename string) Codec {
	switch {
	case strings.HasSuffix(filename, ".sz"):
		return CodecSnappy
	case strings.HasSuffix(filename, ".lz4"):
		return CodecLZ4
	default:
		return CodecNone
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func compressingWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecNone, "":
		return nopCloser{w}, nil
	case CodecSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

// WriteCompressedCSV writes the CSV form of the table through the codec.
func (t *Table) WriteCompressedCSV(w io.Writer, codec Codec) error {
	cw, err := compressingWriter(w, codec)
	if err != nil {
		return err
	}

	if err := t.WriteCSV(cw); err != nil {
		cw.Close()
		return err
	}

	return cw.Close()
}

// NewDecompressingReader undoes WriteCompressedCSV's compression.
func NewDecompressingReader(r io.Reader, codec Codec) (io.Reader, error) {
	switch codec {
	case CodecNone, "":
		return r, nil
	case CodecSnappy:
		return snappy.NewReader(r), nil
	case CodecLZ4:
		return lz4.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}
