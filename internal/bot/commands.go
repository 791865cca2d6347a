package bot

import (
	"strconv"
	"strings"

	"mailshop/internal/model"
)

// Command identifies a menu or callback action. The chat layer maps
// display strings to this closed set; nothing downstream matches on
// button text.
type Command int

const (
	CmdUnknown Command = iota
	CmdMainMenu
	CmdBuyAccounts
	CmdServiceMenu
	CmdBuy
	CmdCustomQuantity
	CmdCancelOrder
	CmdGetCodeMenu
	CmdStartCodeSession
	CmdCodeLinks
	CmdShowFormat
	CmdCodeHelp
	CmdContactSupport
	CmdBalance
	CmdDeposit
	CmdDepositMethod
	CmdReferral
	CmdSpecialOffers
	CmdSupport
	CmdAbout
	CmdCancel

	CmdAdminPanel
	CmdUploadStock
	CmdRemoveFilesMenu
	CmdRemoveStock
	CmdUpdateStocks
	CmdSetPrices
	CmdPendingDeposits
	CmdBroadcast
	CmdConfirmBroadcast
	CmdEditBroadcast
	CmdCancelBroadcast
	CmdManageUsers
	CmdAddBalance
	CmdSendMessage
	CmdViewUser
	CmdDiscountSettings
	CmdReferralSettings
	CmdBackToAdmin
)

// Action is a parsed command with its arguments.
type Action struct {
	Cmd         Command
	Service     model.Service
	CodeService model.CodeService
	Method      string
	Quantity    int
}

// Menu button labels.
const (
	btnBuyAccounts     = "Buy Accounts"
	btnGetCode         = "Get Code"
	btnBalance         = "Balance"
	btnDeposit         = "Deposit"
	btnReferral        = "Referral"
	btnSpecialOffers   = "Special Offers"
	btnSupport         = "Support"
	btnAbout           = "About"
	btnAdminPanel      = "Admin Panel"
	btnMainMenu        = "Main Menu"
	btnBack            = "Back"
	btnBackToServices  = "Back to Services"
	btnBackToAdmin     = "Back to Admin Panel"
	btnCancel          = "Cancel"
	btnRemoveFiles     = "Remove Files"
	btnUpdateStocks    = "Update Stocks"
	btnSetPrices       = "Set Prices"
	btnPendingDeposits = "Pending Deposits"
	btnBroadcast       = "Broadcast"
	btnConfirmBcast    = "Confirm Broadcast"
	btnEditBcast       = "Edit Message"
	btnCancelBcast     = "Cancel Broadcast"
	btnManageUsers     = "Manage Users"
	btnAddBalance      = "Add Balance"
	btnSendMessage     = "Send Message"
	btnViewUser        = "View User Info"
	btnDiscounts       = "Discount Settings"
	btnReferralConf    = "Referral Settings"
)

var depositMethods = []string{"BKash", "Nagad", "Rocket", "Bank Transfer", "Card"}

// ServiceName is the display name used on buttons and receipts.
func ServiceName(s model.Service) string {
	switch s {
	case model.ServiceHotmail:
		return "Hotmail"
	case model.ServiceOutlook:
		return "Outlook"
	case model.ServiceFBGmail:
		return "FB Gmail"
	}
	return string(s)
}

func serviceByName(name string) (model.Service, bool) {
	for _, s := range model.Services() {
		if ServiceName(s) == name {
			return s, true
		}
	}
	return "", false
}

// ParseMenuText maps a reply-keyboard button press to an Action.
func ParseMenuText(text string) Action {
	text = strings.TrimSpace(text)

	switch text {
	case btnBuyAccounts:
		return Action{Cmd: CmdBuyAccounts}
	case btnGetCode:
		return Action{Cmd: CmdGetCodeMenu}
	case btnBalance:
		return Action{Cmd: CmdBalance}
	case btnDeposit:
		return Action{Cmd: CmdDeposit}
	case btnReferral:
		return Action{Cmd: CmdReferral}
	case btnSpecialOffers:
		return Action{Cmd: CmdSpecialOffers}
	case btnSupport:
		return Action{Cmd: CmdSupport}
	case btnAbout:
		return Action{Cmd: CmdAbout}
	case btnAdminPanel:
		return Action{Cmd: CmdAdminPanel}
	case btnMainMenu, btnBack:
		return Action{Cmd: CmdMainMenu}
	case btnBackToServices:
		return Action{Cmd: CmdBuyAccounts}
	case btnBackToAdmin:
		return Action{Cmd: CmdBackToAdmin}
	case btnCancel:
		return Action{Cmd: CmdCancel}
	case btnRemoveFiles:
		return Action{Cmd: CmdRemoveFilesMenu}
	case btnUpdateStocks:
		return Action{Cmd: CmdUpdateStocks}
	case btnSetPrices:
		return Action{Cmd: CmdSetPrices}
	case btnPendingDeposits:
		return Action{Cmd: CmdPendingDeposits}
	case btnBroadcast:
		return Action{Cmd: CmdBroadcast}
	case btnConfirmBcast:
		return Action{Cmd: CmdConfirmBroadcast}
	case btnEditBcast:
		return Action{Cmd: CmdEditBroadcast}
	case btnCancelBcast:
		return Action{Cmd: CmdCancelBroadcast}
	case btnManageUsers:
		return Action{Cmd: CmdManageUsers}
	case btnAddBalance:
		return Action{Cmd: CmdAddBalance}
	case btnSendMessage:
		return Action{Cmd: CmdSendMessage}
	case btnViewUser:
		return Action{Cmd: CmdViewUser}
	case btnDiscounts:
		return Action{Cmd: CmdDiscountSettings}
	case btnReferralConf:
		return Action{Cmd: CmdReferralSettings}
	}

	if svc, ok := serviceByName(text); ok {
		return Action{Cmd: CmdServiceMenu, Service: svc}
	}
	if name, ok := strings.CutPrefix(text, "Upload "); ok {
		if svc, ok := serviceByName(name); ok {
			return Action{Cmd: CmdUploadStock, Service: svc}
		}
	}
	if name, ok := strings.CutPrefix(text, "Remove "); ok {
		if svc, ok := serviceByName(name); ok {
			return Action{Cmd: CmdRemoveStock, Service: svc}
		}
	}
	for _, m := range depositMethods {
		if text == m {
			return Action{Cmd: CmdDepositMethod, Method: m}
		}
	}

	return Action{Cmd: CmdUnknown}
}

// Inline callback payloads.
const (
	cbMainMenu       = "main_menu"
	cbGetCodeMenu    = "get_code_menu"
	cbHotmailCode    = "get_hotmail_code"
	cbGmailCode      = "get_gmail_code"
	cbCodeLinks      = "code_links"
	cbShowFormat     = "show_format"
	cbCodeHelp       = "code_help"
	cbContactSupport = "contact_support"
	cbCancel         = "cancel"
	cbRetryPrefix    = "retry_"
	cbBuyPrefix      = "buy_"
	cbCustomPrefix   = "custom_"
)

// ParseCallback maps inline-keyboard callback data to an Action.
func ParseCallback(data string) Action {
	switch data {
	case cbMainMenu:
		return Action{Cmd: CmdMainMenu}
	case cbGetCodeMenu:
		return Action{Cmd: CmdGetCodeMenu}
	case cbHotmailCode:
		return Action{Cmd: CmdStartCodeSession, CodeService: model.CodeHotmail}
	case cbGmailCode:
		return Action{Cmd: CmdStartCodeSession, CodeService: model.CodeGmail}
	case cbCodeLinks:
		return Action{Cmd: CmdCodeLinks}
	case cbShowFormat:
		return Action{Cmd: CmdShowFormat}
	case cbCodeHelp:
		return Action{Cmd: CmdCodeHelp}
	case cbContactSupport:
		return Action{Cmd: CmdContactSupport}
	case cbCancel:
		return Action{Cmd: CmdCancelOrder}
	}

	if svc, ok := strings.CutPrefix(data, cbRetryPrefix); ok {
		cs := model.CodeService(svc)
		if cs.Valid() {
			return Action{Cmd: CmdStartCodeSession, CodeService: cs}
		}
	}
	if rest, ok := strings.CutPrefix(data, cbBuyPrefix); ok {
		// Service keys contain underscores, the quantity is the last
		// segment.
		if i := strings.LastIndex(rest, "_"); i > 0 {
			svc := model.Service(rest[:i])
			qty, err := strconv.Atoi(rest[i+1:])
			if svc.Valid() && err == nil {
				return Action{Cmd: CmdBuy, Service: svc, Quantity: qty}
			}
		}
	}
	if rest, ok := strings.CutPrefix(data, cbCustomPrefix); ok {
		svc := model.Service(rest)
		if svc.Valid() {
			return Action{Cmd: CmdCustomQuantity, Service: svc}
		}
	}

	return Action{Cmd: CmdUnknown}
}

func buyCallback(svc model.Service, qty int) string {
	return cbBuyPrefix + string(svc) + "_" + strconv.Itoa(qty)
}

func customCallback(svc model.Service) string {
	return cbCustomPrefix + string(svc)
}

func retryCallback(cs model.CodeService) string {
	return cbRetryPrefix + string(cs)
}
