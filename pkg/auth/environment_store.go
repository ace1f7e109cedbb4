package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables. It is read-only and answers every label with the same
// token.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Name identifies the backend in status output
func (e *EnvironmentStore) Name() string {
	return "environment"
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets the bearer token from FLOCKSNAP_BEARER_TOKEN, falling
// back to TWITTER_BEARER_TOKEN
func (e *EnvironmentStore) Retrieve(label string) (*Credential, error) {
	token := os.Getenv("FLOCKSNAP_BEARER_TOKEN")
	if token == "" {
		token = os.Getenv("TWITTER_BEARER_TOKEN")
	}
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	if label == "" {
		label = DefaultLabel
	}

	return &Credential{
		Label:        label,
		BearerToken:  token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single credential if the environment is set
func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve("")
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set
func (e *EnvironmentStore) Exists(label string) bool {
	return os.Getenv("FLOCKSNAP_BEARER_TOKEN") != "" || os.Getenv("TWITTER_BEARER_TOKEN") != ""
}
