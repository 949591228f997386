// Package wallet holds the wallet-side services: reading a balance,
// recording transactions and assembling the transaction history.
package wallet

import (
	"context" // Deadlines

	"campus_wallet/internal/domain" // Importing domain models
)

// WalletSource reads wallet rows
type WalletSource interface {
	Wallet(ctx context.Context, walletID string) (*domain.Wallet, error)
}

// BalanceReader fetches the authoritative balance of the caller's wallet
type BalanceReader struct {
	src WalletSource
}

// NewBalanceReader creates a BalanceReader over src
func NewBalanceReader(src WalletSource) *BalanceReader {
	return &BalanceReader{src: src}
}

// Balance returns the caller's wallet. There is no local copy to fall back on:
// a missing row is reported as domain.ErrWalletNotFound.
func (r *BalanceReader) Balance(ctx context.Context, id domain.Identity) (*domain.Wallet, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	w, err := r.src.Wallet(ctx, id.ProfileID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}
