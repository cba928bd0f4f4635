package store

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/DaanHessen/snappr/internal/engine"
)

// zstdMagic starts every zstd frame; payloads without it are plain JSON.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	encOnce  sync.Once
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
	codecErr error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	encOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

// encode renders a record as JSON, zstd-compressed when compress is set.
func encode(r engine.Record, compress bool) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, wrap(err, "marshal record")
	}
	if !compress {
		return raw, nil
	}
	enc, _, err := codecs()
	if err != nil {
		return nil, wrap(err, "zstd init")
	}
	return enc.EncodeAll(raw, nil), nil
}

// unpack returns the JSON bytes of a stored payload, decompressing when the
// payload carries the zstd frame magic.
func unpack(payload []byte) ([]byte, error) {
	if !bytes.HasPrefix(payload, zstdMagic) {
		return payload, nil
	}
	_, dec, err := codecs()
	if err != nil {
		return nil, wrap(err, "zstd init")
	}
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, wrap(err, "zstd decode")
	}
	return raw, nil
}

// decode validates and decodes a stored payload. Every failure is a corrupt
// payload as far as callers are concerned.
func decode(payload []byte) (engine.Record, error) {
	raw, err := unpack(payload)
	if err != nil {
		return engine.Record{}, err
	}
	if err := validatePayload(raw); err != nil {
		return engine.Record{}, err
	}
	var r engine.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return engine.Record{}, wrap(err, "unmarshal record")
	}
	if r.Version != engine.RecordVersion {
		return engine.Record{}, errors.Errorf("unsupported record version %d", r.Version)
	}
	r.Normalize()
	r.RepairCounters()
	return r, nil
}
