package session

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-client/internal/models"
)

var ErrLoginRejected = errors.New("login returned an unusable token")

// Accounts is the part of the API the Authenticator needs.
type Accounts interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, in models.RegisterRequest) (*models.Account, error)
}

// Authenticator trades credentials for a token and installs it in the store.
type Authenticator struct {
	accounts Accounts
	store    *Store
}

func NewAuthenticator(accounts Accounts, store *Store) *Authenticator {
	return &Authenticator{accounts: accounts, store: store}
}

func (a *Authenticator) Login(ctx context.Context, creds models.Credentials) (Snapshot, error) {
	token, err := a.accounts.Login(ctx, creds)
	if err != nil {
		return a.store.Snapshot(), fmt.Errorf("login: %w", err)
	}
	snap := a.store.Login(ctx, token)
	if !snap.IsLoggedIn {
		return snap, ErrLoginRejected
	}
	return snap, nil
}

// Register creates the account. It does not log in. The role is sent in
// the backend spelling (ROLE_CUSTOMER).
func (a *Authenticator) Register(ctx context.Context, in models.RegisterRequest) (*models.Account, error) {
	if in.Role != "" {
		role, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		in.Role = role.AuthorityName()
	}
	account, err := a.accounts.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return account, nil
}
