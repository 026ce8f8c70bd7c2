package cache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/glitch/pkg/expr"
)

// Canonical CBOR so a program list always encodes to the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// marshalPrograms serializes compiled programs to CBOR bytes.
func marshalPrograms(progs [][]expr.Instruction) ([]byte, error) {
	return cborEncMode.Marshal(progs)
}

// unmarshalPrograms deserializes compiled programs from CBOR bytes.
func unmarshalPrograms(data []byte) ([][]expr.Instruction, error) {
	var progs [][]expr.Instruction
	if err := cbor.Unmarshal(data, &progs); err != nil {
		return nil, fmt.Errorf("cache: unmarshal programs: %w", err)
	}
	return progs, nil
}
