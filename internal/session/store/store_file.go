package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Atrox/homedir"
)

// DefaultCredentialPath is where the file store keeps the credential unless
// configured otherwise.
const DefaultCredentialPath = "~/.config/inkwell/credential"

// FileStore persists the credential as a single opaque string in a 0600 file.
// This is the default backend for the CLI.
type FileStore struct {
	path string
}

// NewFile builds a file store at the given path. A leading ~ is expanded.
func NewFile(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultCredentialPath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand credential path: %w", err)
	}
	return &FileStore{path: expanded}, nil
}

// Path returns the expanded on-disk location of the credential.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	credential := strings.TrimSpace(string(data))
	if credential == "" {
		return "", ErrNoCredential
	}
	return credential, nil
}

func (s *FileStore) Save(_ context.Context, credential string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(credential+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
