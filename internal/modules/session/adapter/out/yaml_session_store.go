package out

import sessionout "lootledger/internal/modules/session/port/out"

type plainCodec struct{}

func (plainCodec) encode(doc []byte) ([]byte, error) { return doc, nil }
func (plainCodec) decode(raw []byte) ([]byte, error) { return raw, nil }

// NewYAMLSessionStore keeps live and stopped sessions as readable YAML
// files under dir.
func NewYAMLSessionStore(dir string) sessionout.SessionStore {
	return &fileSessionStore{dir: dir, ext: ".yaml", codec: plainCodec{}}
}
