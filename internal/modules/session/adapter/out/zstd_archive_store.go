package out

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	sessionout "lootledger/internal/modules/session/port/out"
)

type zstdCodec struct{}

func (zstdCodec) encode(doc []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(doc); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (zstdCodec) decode(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	doc, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return doc, nil
}

// NewZstdArchiveStore keeps archived sessions compressed under dir.
func NewZstdArchiveStore(dir string) sessionout.ArchiveStore {
	return &fileSessionStore{dir: dir, ext: ".yaml.zst", codec: zstdCodec{}}
}
