package store

import (
	"encoding/json"
	"fmt"

	"github.com/pavelanni/quizapp/internal/model"
)

// CredentialKey is the well-known settings key of the single session slot.
const CredentialKey = "credential"

// LoadCredential returns the persisted credential, or nil if no session is stored.
func (s *Store) LoadCredential() (*model.Credential, error) {
	raw, err := s.GetMetadata(CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var cred model.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &cred, nil
}

// SaveCredential overwrites the session slot.
func (s *Store) SaveCredential(cred model.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	return s.SetMetadata(CredentialKey, string(data))
}

// ClearCredential empties the session slot. It is a no-op when the slot is empty.
func (s *Store) ClearCredential() error {
	return s.DeleteMetadata(CredentialKey)
}
