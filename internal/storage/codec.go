package storage

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstd encoder and decoder are safe for concurrent EncodeAll/DecodeAll
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil)
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return codecErr
}

// compress encodes content for key/value backends
func compress(content []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("init zstd codec: %w", err)
	}
	return encoder.EncodeAll(content, make([]byte, 0, len(content)/2+16)), nil
}

// decompress reverses compress
func decompress(data []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("init zstd codec: %w", err)
	}
	content, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
