package integration

import (
	"context"
	"fmt"
	"sync"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// fakeEncValueService simulates the external homomorphic encryption engine.
// For tests the "ciphertext" is the little-endian encoding of the amount, so
// the fake can track the plaintext behind every handle and verify proofs.
type fakeEncValueService struct {
	mu     sync.Mutex
	values map[domain.Handle]uint64
}

func newFakeEncValueService() *fakeEncValueService {
	return &fakeEncValueService{values: make(map[domain.Handle]uint64)}
}

func (f *fakeEncValueService) newHandle(value uint64) domain.Handle {
	h := domain.Handle(uuid.New())
	f.values[h] = value
	return h
}

func (f *fakeEncValueService) Materialize(ctx context.Context, ciphertext []byte) (domain.Handle, error) {
	if len(ciphertext) == 0 {
		return domain.ZeroHandle, fmt.Errorf("empty ciphertext")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newHandle(domain.DecodePlaintextAmount(ciphertext)), nil
}

func (f *fakeEncValueService) EncAdd(ctx context.Context, a, b domain.Handle) (domain.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	va, ok := f.values[a]
	if !ok {
		return domain.ZeroHandle, fmt.Errorf("unknown handle %s", a)
	}
	vb, ok := f.values[b]
	if !ok {
		return domain.ZeroHandle, fmt.Errorf("unknown handle %s", b)
	}
	return f.newHandle(va + vb), nil
}

func (f *fakeEncValueService) EncSub(ctx context.Context, a, b domain.Handle) (domain.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	va, ok := f.values[a]
	if !ok {
		return domain.ZeroHandle, fmt.Errorf("unknown handle %s", a)
	}
	vb, ok := f.values[b]
	if !ok {
		return domain.ZeroHandle, fmt.Errorf("unknown handle %s", b)
	}
	return f.newHandle(va - vb), nil
}

func (f *fakeEncValueService) GrantAccess(ctx context.Context, handle domain.Handle, grantee uuid.UUID, persist bool) error {
	return nil
}

func (f *fakeEncValueService) VerifyProof(ctx context.Context, handles []domain.Handle, claimedPlaintexts [][]byte, signature []byte) error {
	if len(signature) == 0 {
		return fmt.Errorf("missing signature")
	}
	if len(handles) != len(claimedPlaintexts) {
		return fmt.Errorf("handle/plaintext count mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range handles {
		stored, ok := f.values[h]
		if !ok {
			return fmt.Errorf("unknown handle %s", h)
		}
		if claimed := domain.DecodePlaintextAmount(claimedPlaintexts[i]); claimed != stored {
			return fmt.Errorf("claimed plaintext does not match handle %s", h)
		}
	}
	return nil
}

// fakeCustodyService simulates the external asset custody service by
// tracking the pooled vault balance.
type fakeCustodyService struct {
	mu           sync.Mutex
	vaultBalance uint64
	moves        int
}

func newFakeCustodyService() *fakeCustodyService {
	return &fakeCustodyService{}
}

func (f *fakeCustodyService) MoveToVault(ctx context.Context, amount uint64, from string, vaultRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vaultBalance += amount
	f.moves++
	return nil
}

func (f *fakeCustodyService) MoveFromVault(ctx context.Context, amount uint64, vaultRef string, to string, vaultAuthorityProof string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if vaultAuthorityProof == "" {
		return fmt.Errorf("missing vault authority proof")
	}
	if amount > f.vaultBalance {
		return fmt.Errorf("vault underfunded: %d > %d", amount, f.vaultBalance)
	}
	f.vaultBalance -= amount
	f.moves++
	return nil
}

func (f *fakeCustodyService) balance() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vaultBalance
}
