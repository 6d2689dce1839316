package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// KeypairStep generates an ed25519 keypair in OpenSSH format.
//
// An existing private key is never overwritten: presence of the file is
// the predicate, regardless of key type or age.
type KeypairStep struct {
	catalog.Meta
	path    string
	comment string
}

// Check reports satisfied when the private key file exists.
func (s *KeypairStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	if _, err := os.Stat(ctx.Env().ExpandHome(s.path)); err == nil {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

// Apply generates the keypair. The private key is written 0600, the
// public key 0644, both under a 0700 .ssh directory.
func (s *KeypairStep) Apply(ctx catalog.RunContext) error {
	path := ctx.Env().ExpandHome(s.path)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, s.comment)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}
	pubLine := strings.TrimRight(string(ssh.MarshalAuthorizedKey(sshPub)), "\n")
	if s.comment != "" {
		pubLine += " " + s.comment
	}
	pubLine += "\n"

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(path+".pub", []byte(pubLine), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

// Version is not meaningful for keypairs.
func (s *KeypairStep) Version(_ catalog.RunContext) string {
	return ""
}

// Ensure KeypairStep implements catalog.Step.
var _ catalog.Step = (*KeypairStep)(nil)
