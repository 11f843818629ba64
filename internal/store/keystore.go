package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sealink/internal/domain"
)

const (
	idFilename  = "identity.json.enc"
	pubFilename = "identity.pub"
)

// identityRecord is the plaintext JSON inside the envelope.
type identityRecord struct {
	EdPub  []byte `json:"ed_pub"`
	EdPriv []byte `json:"ed_priv"`
}

// IdentityFileStore persists the local identity to disk. The private key
// goes into the encrypted envelope; the public key is mirrored next to it
// as a hex .pub file for sharing.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity writes the encrypted identity and its public mirror.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(identityRecord{
		EdPub:  id.EdPub.Slice(),
		EdPriv: id.EdPriv.Slice(),
	})
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	ct, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(s.dir, idFilename), ct, 0o600); err != nil {
		return err
	}
	pub := hex.EncodeToString(id.EdPub.Slice()) + "\n"
	return writeFile(filepath.Join(s.dir, pubFilename), []byte(pub), 0o644)
}

// LoadIdentity reads and decrypts the identity.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, idFilename))
	if err != nil {
		return domain.Identity{}, err
	}
	pt, err := decrypt(passphrase, b)
	if err != nil {
		return domain.Identity{}, err
	}
	var rec identityRecord
	if err := json.Unmarshal(pt, &rec); err != nil {
		return domain.Identity{}, err
	}
	if len(rec.EdPub) != 32 || len(rec.EdPriv) != 64 {
		return domain.Identity{}, fmt.Errorf("identity record has bad key lengths")
	}
	var id domain.Identity
	copy(id.EdPub[:], rec.EdPub)
	copy(id.EdPriv[:], rec.EdPriv)
	return id, nil
}

// PublicKeyPath returns where the shareable public key lives.
func (s *IdentityFileStore) PublicKeyPath() string {
	return filepath.Join(s.dir, pubFilename)
}

// ReadPublicKey parses a hex .pub file written by SaveIdentity, local or
// copied from a peer. A missing path yields a zero key and no error when
// path is empty.
func ReadPublicKey(path string) (domain.Ed25519Public, error) {
	var pub domain.Ed25519Public
	if path == "" {
		return pub, nil
	}
	b, err := readFile(path)
	if err != nil {
		return pub, err
	}
	if b == nil {
		return pub, fmt.Errorf("public key file %s does not exist", path)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return pub, fmt.Errorf("parse public key %s: %w", path, err)
	}
	if len(raw) != 32 {
		return pub, fmt.Errorf("public key %s: want 32 bytes, got %d", path, len(raw))
	}
	copy(pub[:], raw)
	return pub, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
