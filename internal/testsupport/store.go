package testsupport

import (
	"context"
	"testing"

	"huella/internal/config"
	"huella/internal/identity"
	"huella/internal/template"
)

// MustOpenStore opens an identity.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *identity.Store {
	t.Helper()

	store, err := identity.Open(cfg)
	if err != nil {
		t.Fatalf("identity.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Enroll inserts an identity with the provided raw template bytes.
func Enroll(t testing.TB, store *identity.Store, given, family, externalKey string, raw []byte) {
	t.Helper()

	err := store.Upsert(context.Background(), identity.Identity{
		GivenName:   given,
		FamilyName:  family,
		ExternalKey: externalKey,
		Template:    template.Encode(raw),
	})
	if err != nil {
		t.Fatalf("Upsert %s: %v", externalKey, err)
	}
}
