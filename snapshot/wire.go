package snapshot

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshots are stored and compared as bytes, so encoding is canonical and
// decoding rejects duplicate keys rather than letting the last one win.
var (
	snapshotEnc cbor.EncMode
	snapshotDec cbor.DecMode
)

func init() {
	var err error
	if snapshotEnc, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("snapshot: canonical encoder: %v", err))
	}
	if snapshotDec, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(fmt.Sprintf("snapshot: decoder: %v", err))
	}
}

// Marshal encodes s in canonical CBOR. Two snapshots with equal contents,
// including the ID, encode to equal bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, errors.New("snapshot: marshal nil snapshot")
	}
	return snapshotEnc.Marshal(s)
}

// Unmarshal decodes a snapshot written by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := snapshotDec.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}
