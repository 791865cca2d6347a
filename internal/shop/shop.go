// Package shop coordinates balance checks, stock consumption and
// deposit state transitions on top of the store.
package shop

import (
	"errors"
	"math"

	"mailshop/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrUnknownService  = errors.New("unknown service")
)

// Store is what the orchestrator needs from the ledger and stock
// storage. *store.Database satisfies it.
type Store interface {
	GetOrCreateUser(userID int64, username string) (*model.User, bool, error)
	GetUserByID(userID int64) (*model.User, error)
	GetBalance(userID int64) (float64, error)
	CreditBalance(userID int64, amount float64) error
	RegisterReferral(referredID int64, code string) error

	GetPrice(service model.Service) (float64, error)
	DiscountTiers() ([]model.DiscountTier, error)
	Count(service model.Service) (int, error)
	PurchaseRows(userID int64, service model.Service, n int, total float64) ([]model.StockRow, error)

	RecordDeposit(userID int64, amount float64, method string) (int64, error)
	LatestPendingDeposit(userID int64) (int64, error)
	AttachTransactionID(requestID int64, txnID string) error
	ResolveDeposit(requestID int64, approve bool) (*model.DepositRequest, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

type PurchaseResult struct {
	Rows            []model.StockRow
	UnitPrice       float64
	DiscountPercent float64
	Total           float64
}

// Quote prices an order without touching balance or stock.
func (s *Service) Quote(service model.Service, quantity int) (*PurchaseResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !service.Valid() {
		return nil, ErrUnknownService
	}

	unitPrice, err := s.store.GetPrice(service)
	if err != nil {
		return nil, err
	}
	tiers, err := s.store.DiscountTiers()
	if err != nil {
		return nil, err
	}

	discount := Discount(tiers, quantity)
	return &PurchaseResult{
		UnitPrice:       unitPrice,
		DiscountPercent: discount,
		Total:           Total(unitPrice, quantity, discount),
	}, nil
}

// Purchase prices the order, then debits the balance and takes the
// stock rows as one transaction inside the store. Either everything
// happens or nothing does.
func (s *Service) Purchase(userID int64, service model.Service, quantity int) (*PurchaseResult, error) {
	result, err := s.Quote(service, quantity)
	if err != nil {
		return nil, err
	}

	result.Rows, err = s.store.PurchaseRows(userID, service, quantity, result.Total)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Signup registers the user on first contact and applies a referral
// code if one came with the start command. Referral errors are
// reported but never block the signup itself.
func (s *Service) Signup(userID int64, username, referralCode string) (*model.User, bool, error) {
	user, created, err := s.store.GetOrCreateUser(userID, username)
	if err != nil {
		return nil, false, err
	}

	if created && referralCode != "" {
		if err := s.store.RegisterReferral(userID, referralCode); err == nil {
			// Balance changed, re-read for the welcome message.
			if refreshed, rerr := s.store.GetUserByID(userID); rerr == nil {
				user = refreshed
			}
		}
	}
	return user, created, nil
}

func (s *Service) Balance(userID int64) (float64, error) {
	return s.store.GetBalance(userID)
}

// validAmount rejects NaN and infinities besides non-positive values.
// Postgres numeric accepts both and NaN compares greater than any
// number, so a CHECK constraint alone does not stop them from
// poisoning a balance.
func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// StartDeposit records a deposit request awaiting a transaction id and
// manual approval.
func (s *Service) StartDeposit(userID int64, amount float64, method string) (int64, error) {
	if !validAmount(amount) {
		return 0, ErrInvalidAmount
	}
	return s.store.RecordDeposit(userID, amount, method)
}

// Credit adds funds to a user's balance on an operator's behalf.
func (s *Service) Credit(userID int64, amount float64) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	return s.store.CreditBalance(userID, amount)
}

// AttachTransactionID binds the user's follow-up transaction id to
// their latest pending request and returns that request's id.
func (s *Service) AttachTransactionID(userID int64, txnID string) (int64, error) {
	requestID, err := s.store.LatestPendingDeposit(userID)
	if err != nil {
		return 0, err
	}
	if err := s.store.AttachTransactionID(requestID, txnID); err != nil {
		return 0, err
	}
	return requestID, nil
}

func (s *Service) ResolveDeposit(requestID int64, approve bool) (*model.DepositRequest, error) {
	return s.store.ResolveDeposit(requestID, approve)
}
