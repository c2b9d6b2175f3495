package services

import (
	"context"
	"io"

	"github.com/merchke/storefront/internal/forms"
	"github.com/merchke/storefront/internal/session"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AccountAPI defines the backend calls behind sign-in and the account pages.
type AccountAPI interface {
	Login(ctx context.Context, req types.LoginRequest) (types.AuthResponse, error)
	Register(ctx context.Context, req types.RegisterRequest) (types.AuthResponse, error)
	MigrateCart(ctx context.Context) (types.MessageResponse, error)
	Points(ctx context.Context) (types.PointsResponse, error)
	WalletBalance(ctx context.Context) (types.WalletBalance, error)
	WalletTransactions(ctx context.Context) (types.WalletTransactionsResponse, error)
	AddWalletTokens(ctx context.Context, amount float64) (types.MessageResponse, error)
}

// UserService encapsulates account use-cases.
type UserService struct {
	api  AccountAPI
	auth *session.AuthState
	cart *session.CartState
	log  logrus.FieldLogger
}

func NewUserService(api AccountAPI, auth *session.AuthState, cart *session.CartState, logger logrus.FieldLogger) *UserService {
	return &UserService{api: api, auth: auth, cart: cart, log: orDiscard(logger)}
}

// Login signs in, moves any guest cart to the account and refreshes the
// cart count. A failed migration is logged and otherwise ignored.
func (s *UserService) Login(ctx context.Context, req types.LoginRequest) (types.User, error) {
	if err := forms.Login(req); err != nil {
		return types.User{}, err
	}
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return types.User{}, err
	}
	s.signedIn(ctx, resp.User)
	return resp.User, nil
}

// Register creates the account and then behaves like Login.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (types.User, error) {
	if err := forms.Register(req); err != nil {
		return types.User{}, err
	}
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return types.User{}, err
	}
	s.signedIn(ctx, resp.User)
	return resp.User, nil
}

func (s *UserService) signedIn(ctx context.Context, user types.User) {
	s.auth.Login(user)

	entry := s.log.WithField("user_id", user.ID)
	if _, err := s.api.MigrateCart(ctx); err != nil {
		entry.WithError(err).Info("guest cart not migrated")
	} else {
		entry.Debug("guest cart migrated")
	}
	s.cart.Refresh(ctx)
}

// Logout forgets the token. The cart count falls back to the guest cart.
func (s *UserService) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)
	s.cart.Refresh(ctx)
	return err
}

// Me reloads the current user from the stored token.
func (s *UserService) Me(ctx context.Context) (types.User, error) {
	s.auth.Refresh(ctx)
	user, ok := s.auth.User()
	if !ok {
		return types.User{}, ErrNotSignedIn
	}
	return user, nil
}

func (s *UserService) Points(ctx context.Context) (types.PointsResponse, error) {
	return s.api.Points(ctx)
}

type WalletView struct {
	Balance      float64                   `json:"balance"`
	Transactions []types.WalletTransaction `json:"transactions"`
}

// Wallet loads the balance and its history together.
func (s *UserService) Wallet(ctx context.Context) (WalletView, error) {
	var (
		balance types.WalletBalance
		txs     types.WalletTransactionsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.api.WalletBalance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.api.WalletTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return WalletView{}, err
	}
	if txs.Transactions == nil {
		txs.Transactions = []types.WalletTransaction{}
	}
	return WalletView{Balance: balance.Balance, Transactions: txs.Transactions}, nil
}

// TopUpWallet adds amount tokens and returns the new wallet.
func (s *UserService) TopUpWallet(ctx context.Context, amount float64) (WalletView, error) {
	if amount <= 0 {
		return WalletView{}, ErrInvalidAmount
	}
	if _, err := s.api.AddWalletTokens(ctx, amount); err != nil {
		return WalletView{}, err
	}
	return s.Wallet(ctx)
}

// CartCount is the last refreshed cart badge count.
func (s *UserService) CartCount() int {
	return s.cart.Count()
}

func orDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}
