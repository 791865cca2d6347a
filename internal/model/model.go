package model

import "time"

// Service is an account type sold from stock.
type Service string

const (
	ServiceHotmail Service = "hotmail"
	ServiceOutlook Service = "outlook"
	ServiceFBGmail Service = "fb_gmail"
)

// Services lists every sellable service in display order.
func Services() []Service {
	return []Service{ServiceHotmail, ServiceOutlook, ServiceFBGmail}
}

func (s Service) Valid() bool {
	switch s {
	case ServiceHotmail, ServiceOutlook, ServiceFBGmail:
		return true
	}
	return false
}

// CodeService is a verification-code lookup family. Hotmail-style
// lookups need the full credential tuple, Gmail-style only an address.
type CodeService string

const (
	CodeHotmail CodeService = "hotmail"
	CodeGmail   CodeService = "gmail"
)

func (s CodeService) Valid() bool {
	return s == CodeHotmail || s == CodeGmail
}

type User struct {
	ID             int64     `json:"user_id"`
	Username       string    `json:"username"`
	Balance        float64   `json:"balance"`
	ReferralCode   string    `json:"referral_code"`
	ReferredBy     *int64    `json:"referred_by,omitempty"`
	TotalReferrals int       `json:"total_referrals"`
	CreatedAt      time.Time `json:"created_at"`
}

type DepositStatus string

const (
	DepositPending  DepositStatus = "pending"
	DepositApproved DepositStatus = "approved"
	DepositRejected DepositStatus = "rejected"
)

type DepositRequest struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	Username      string        `json:"username"`
	Amount        float64       `json:"amount"`
	Method        string        `json:"method"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Status        DepositStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type RewardStatus string

const (
	RewardPending  RewardStatus = "pending"
	RewardApproved RewardStatus = "approved"
)

// ReferralReward is created when a referred user signs up. The amount
// is a snapshot of the referrer bonus at creation time. The transition
// to approved is a manual operator step.
type ReferralReward struct {
	ID         int64        `json:"id"`
	ReferrerID int64        `json:"referrer_id"`
	ReferredID int64        `json:"referred_id"`
	Amount     float64      `json:"amount"`
	Status     RewardStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

type ReferralSettings struct {
	ReferrerBonus float64 `json:"referrer_bonus"`
	ReferredBonus float64 `json:"referred_bonus"`
}

type ReferralStats struct {
	TotalReferrals int              `json:"total_referrals"`
	TotalEarnings  float64          `json:"total_earnings"`
	PendingRewards int              `json:"pending_rewards"`
	Settings       ReferralSettings `json:"settings"`
}

// DiscountTier grants Percent off when the purchased quantity reaches
// MinQuantity. The tier with the largest qualifying MinQuantity wins.
type DiscountTier struct {
	MinQuantity int     `json:"min_quantity"`
	Percent     float64 `json:"percent"`
}

// StockRow is one unsold credential record. Fields is the opaque
// per-service tuple, e.g. email/password/recovery columns.
type StockRow struct {
	ID     int64    `json:"id"`
	Fields []string `json:"fields"`
}
