// Package snapshot encodes session snapshots for persistence.
package snapshot

import (
	"fmt"
	"io"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/fxamacker/cbor/v2"
)

// encMode produces deterministic output with nanosecond timestamps.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Encode encodes a snapshot to CBOR bytes using integer keys.
func Encode(s *domain.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("encode snapshot: nil snapshot")
	}
	return encMode.Marshal(s)
}

// Decode decodes CBOR bytes into a snapshot.
func Decode(data []byte) (*domain.Snapshot, error) {
	var s domain.Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// NewEncoder creates a streaming snapshot encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a streaming snapshot decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
