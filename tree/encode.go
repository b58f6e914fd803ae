package tree

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

type snapshot struct {
	Nodes []Node
	Free  []int
}

// GobEncode implements gob.GobEncoder so that ensembles can be persisted.
func (t *Tree) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot{Nodes: t.nodes, Free: t.free}); err != nil {
		return nil, errors.Wrap(err, "tree: encode")
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Tree) GobDecode(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return errors.Wrap(err, "tree: decode")
	}
	if len(s.Nodes) == 0 {
		return errors.NewValueError("tree.GobDecode", "tree has no root")
	}
	t.nodes = s.Nodes
	t.free = s.Free
	return nil
}
