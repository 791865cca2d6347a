package shop

import (
	"errors"
	"math"
	"testing"

	"mailshop/internal/model"
	"mailshop/internal/store"
)

// fakeStore records calls and serves canned data, no database needed.
type fakeStore struct {
	users    map[int64]*model.User
	balance  float64
	price    float64
	tiers    []model.DiscountTier
	stock    []model.StockRow
	stockErr error

	purchaseUser  int64
	purchaseQty   int
	purchaseTotal float64

	referralErr    error
	referredWith   string
	depositID      int64
	pendingID      int64
	pendingErr     error
	attachedTxnID  string
	resolved       map[int64]bool
	resolveApprove bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*model.User),
		price:    10,
		resolved: make(map[int64]bool),
	}
}

func (f *fakeStore) GetOrCreateUser(userID int64, username string) (*model.User, bool, error) {
	if u, ok := f.users[userID]; ok {
		return u, false, nil
	}
	u := &model.User{ID: userID, Username: username, Balance: f.balance}
	f.users[userID] = u
	return u, true, nil
}

func (f *fakeStore) GetUserByID(userID int64) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) GetBalance(userID int64) (float64, error) { return f.balance, nil }

func (f *fakeStore) CreditBalance(userID int64, amount float64) error {
	u, ok := f.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Balance += amount
	return nil
}

func (f *fakeStore) RegisterReferral(referredID int64, code string) error {
	if f.referralErr != nil {
		return f.referralErr
	}
	f.referredWith = code
	if u, ok := f.users[referredID]; ok {
		u.Balance += 25
	}
	return nil
}

func (f *fakeStore) GetPrice(service model.Service) (float64, error) { return f.price, nil }

func (f *fakeStore) DiscountTiers() ([]model.DiscountTier, error) { return f.tiers, nil }

func (f *fakeStore) Count(service model.Service) (int, error) { return len(f.stock), nil }

func (f *fakeStore) PurchaseRows(userID int64, service model.Service, n int, total float64) ([]model.StockRow, error) {
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	f.purchaseUser = userID
	f.purchaseQty = n
	f.purchaseTotal = total
	return f.stock[:n], nil
}

func (f *fakeStore) RecordDeposit(userID int64, amount float64, method string) (int64, error) {
	f.depositID++
	return f.depositID, nil
}

func (f *fakeStore) LatestPendingDeposit(userID int64) (int64, error) {
	if f.pendingErr != nil {
		return 0, f.pendingErr
	}
	return f.pendingID, nil
}

func (f *fakeStore) AttachTransactionID(requestID int64, txnID string) error {
	f.attachedTxnID = txnID
	return nil
}

// ResolveDeposit mirrors the store's pending guard: only the first
// resolve of a request transitions it.
func (f *fakeStore) ResolveDeposit(requestID int64, approve bool) (*model.DepositRequest, error) {
	if f.resolved[requestID] {
		return nil, store.ErrDepositNotFound
	}
	f.resolved[requestID] = true
	f.resolveApprove = approve
	return &model.DepositRequest{ID: requestID}, nil
}

func TestQuote(t *testing.T) {
	fs := newFakeStore()
	fs.price = 10
	fs.tiers = []model.DiscountTier{{MinQuantity: 5, Percent: 10}}
	svc := New(fs)

	t.Run("discount applied", func(t *testing.T) {
		got, err := svc.Quote(model.ServiceHotmail, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.UnitPrice != 10 || got.DiscountPercent != 10 || got.Total != 45 {
			t.Errorf("got %+v, want unit 10, discount 10, total 45", got)
		}
	})

	t.Run("below tier", func(t *testing.T) {
		got, err := svc.Quote(model.ServiceHotmail, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Total != 20 {
			t.Errorf("got total %v, want 20", got.Total)
		}
	})

	t.Run("invalid quantity", func(t *testing.T) {
		if _, err := svc.Quote(model.ServiceHotmail, 0); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("got error %v, want ErrInvalidQuantity", err)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		if _, err := svc.Quote(model.Service("yahoo"), 1); !errors.Is(err, ErrUnknownService) {
			t.Errorf("got error %v, want ErrUnknownService", err)
		}
	})
}

func TestPurchase(t *testing.T) {
	fs := newFakeStore()
	fs.price = 10
	fs.balance = 100
	fs.stock = []model.StockRow{
		{ID: 1, Fields: []string{"a@x.com", "p1"}},
		{ID: 2, Fields: []string{"b@x.com", "p2"}},
		{ID: 3, Fields: []string{"c@x.com", "p3"}},
		{ID: 4, Fields: []string{"d@x.com", "p4"}},
		{ID: 5, Fields: []string{"e@x.com", "p5"}},
	}
	svc := New(fs)

	result, err := svc.Purchase(42, model.ServiceOutlook, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(result.Rows))
	}
	for i, row := range result.Rows {
		if row.ID != int64(i+1) {
			t.Errorf("row %d has id %d, want the head rows in order", i, row.ID)
		}
	}
	if fs.purchaseUser != 42 || fs.purchaseQty != 5 {
		t.Errorf("store called with user %d qty %d, want 42 and 5", fs.purchaseUser, fs.purchaseQty)
	}
	if fs.purchaseTotal != 50 {
		t.Errorf("store debited %v, want 50", fs.purchaseTotal)
	}
}

func TestPurchaseStoreErrorsPassThrough(t *testing.T) {
	for _, wantErr := range []error{store.ErrInsufficientFunds, store.ErrInsufficientStock} {
		fs := newFakeStore()
		fs.stockErr = wantErr
		svc := New(fs)

		if _, err := svc.Purchase(1, model.ServiceHotmail, 1); !errors.Is(err, wantErr) {
			t.Errorf("got error %v, want %v", err, wantErr)
		}
	}
}

func TestSignup(t *testing.T) {
	t.Run("referral credited on first contact", func(t *testing.T) {
		fs := newFakeStore()
		svc := New(fs)

		user, created, err := svc.Signup(7, "alice", "REF1ABCD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Error("expected created flag for a new user")
		}
		if fs.referredWith != "REF1ABCD" {
			t.Errorf("referral registered with %q, want REF1ABCD", fs.referredWith)
		}
		if user.Balance != 25 {
			t.Errorf("got balance %v, want the referred bonus applied", user.Balance)
		}
	})

	t.Run("referral failure never blocks signup", func(t *testing.T) {
		fs := newFakeStore()
		fs.referralErr = store.ErrReferralCodeNotFound
		svc := New(fs)

		_, created, err := svc.Signup(8, "bob", "REFBOGUS")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Error("expected created flag despite referral failure")
		}
	})

	t.Run("returning user keeps code unused", func(t *testing.T) {
		fs := newFakeStore()
		svc := New(fs)

		if _, _, err := svc.Signup(9, "carol", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, created, err := svc.Signup(9, "carol", "REF1ABCD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created {
			t.Error("second contact must not report created")
		}
		if fs.referredWith != "" {
			t.Error("referral must only apply on first contact")
		}
	})
}

func TestStartDeposit(t *testing.T) {
	fs := newFakeStore()
	svc := New(fs)

	badAmounts := map[string]float64{
		"zero":     0,
		"negative": -5,
		"nan":      math.NaN(),
		"+inf":     math.Inf(1),
		"-inf":     math.Inf(-1),
	}
	for name, amount := range badAmounts {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.StartDeposit(1, amount, "BKash"); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("got error %v, want ErrInvalidAmount", err)
			}
		})
	}
	if fs.depositID != 0 {
		t.Errorf("%d requests recorded, want none for rejected amounts", fs.depositID)
	}

	id, err := svc.StartDeposit(1, 100, "BKash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("got request id %d, want 1", id)
	}
}

func TestCredit(t *testing.T) {
	fs := newFakeStore()
	svc := New(fs)
	if _, _, err := svc.Signup(5, "dave", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, amount := range map[string]float64{
		"zero":     0,
		"negative": -10,
		"nan":      math.NaN(),
		"+inf":     math.Inf(1),
		"-inf":     math.Inf(-1),
	} {
		t.Run(name, func(t *testing.T) {
			if err := svc.Credit(5, amount); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("got error %v, want ErrInvalidAmount", err)
			}
		})
	}
	if fs.users[5].Balance != 0 {
		t.Errorf("got balance %v, want 0 after rejected credits", fs.users[5].Balance)
	}

	if err := svc.Credit(5, 75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.users[5].Balance != 75 {
		t.Errorf("got balance %v, want 75", fs.users[5].Balance)
	}

	if err := svc.Credit(404, 10); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("got error %v, want ErrUserNotFound", err)
	}
}

func TestAttachTransactionID(t *testing.T) {
	t.Run("binds to latest pending request", func(t *testing.T) {
		fs := newFakeStore()
		fs.pendingID = 33
		svc := New(fs)

		id, err := svc.AttachTransactionID(1, "TXN42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 33 {
			t.Errorf("got request id %d, want 33", id)
		}
		if fs.attachedTxnID != "TXN42" {
			t.Errorf("attached %q, want TXN42", fs.attachedTxnID)
		}
	})

	t.Run("no pending request", func(t *testing.T) {
		fs := newFakeStore()
		fs.pendingErr = store.ErrDepositNotFound
		svc := New(fs)

		if _, err := svc.AttachTransactionID(1, "TXN42"); !errors.Is(err, store.ErrDepositNotFound) {
			t.Errorf("got error %v, want ErrDepositNotFound", err)
		}
	})
}

func TestResolveDeposit(t *testing.T) {
	fs := newFakeStore()
	svc := New(fs)

	req, err := svc.ResolveDeposit(12, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID != 12 || !fs.resolved[12] || !fs.resolveApprove {
		t.Errorf("resolve recorded %v approve %v, want request 12 approved", fs.resolved, fs.resolveApprove)
	}
}

func TestResolveDepositOnlyOnce(t *testing.T) {
	fs := newFakeStore()
	svc := New(fs)

	if _, err := svc.ResolveDeposit(12, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The pending guard makes the second resolve a no-op: no request
	// transitions twice and no balance is credited twice.
	if _, err := svc.ResolveDeposit(12, false); !errors.Is(err, store.ErrDepositNotFound) {
		t.Errorf("got error %v, want ErrDepositNotFound on a second resolve", err)
	}
	if !fs.resolveApprove {
		t.Error("second resolve must not overwrite the recorded outcome")
	}
}
