package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mailshop/internal/logging"
	"mailshop/internal/model"
	"mailshop/internal/stockfile"
	"mailshop/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help":
		b.sendMainMenu(msg.Chat.ID, msg.From.ID)
	case "setprice":
		b.adminOnly(b.setPriceCommand)(msg)
	case "approve":
		b.adminOnly(b.approveDepositCommand)(msg)
	case "reject":
		b.adminOnly(b.rejectDepositCommand)(msg)
	case "adddiscount":
		b.adminOnly(b.addDiscountCommand)(msg)
	case "removediscount":
		b.adminOnly(b.removeDiscountCommand)(msg)
	case "setreferral":
		b.adminOnly(b.setReferralCommand)(msg)
	default:
		b.send(msg.Chat.ID, "Unknown command. Use the menu below.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	userID := msg.From.ID
	username := msg.From.UserName
	if username == "" {
		username = fmt.Sprintf("User_%d", userID)
	}

	referralCode := ""
	if args := strings.TrimSpace(msg.CommandArguments()); strings.HasPrefix(args, "REF") {
		referralCode = args
	}

	user, created, err := b.shop.Signup(userID, username, referralCode)
	if err != nil {
		logging.Logg.Error("Signup failed", "user_id", userID, "error", err)
		b.send(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	welcome := fmt.Sprintf(`Welcome to Account Verification Bot, %s!

We offer:
- Hotmail accounts
- Outlook accounts
- FB Gmail accounts
- Verification codes for Hotmail/Outlook and Gmail

Use Deposit to top up your balance and Support if you need help.`, msg.From.FirstName)

	if created && user.Balance > 0 {
		welcome += fmt.Sprintf("\n\nWelcome bonus credited: %.2f", user.Balance)
	}
	b.sendWithMarkup(msg.Chat.ID, welcome, mainKeyboard(b.isAdmin(userID)))
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID

	// An active code session consumes the next message, whatever it is.
	if sess, ok := b.sessions.Get(userID); ok {
		b.handleCodePayload(msg, sess.Service)
		return
	}

	act := ParseMenuText(msg.Text)
	if act.Cmd == CmdUnknown {
		b.handlePendingInput(msg)
		return
	}

	switch act.Cmd {
	case CmdMainMenu, CmdCancel:
		b.clearPending(userID)
		b.sendMainMenu(msg.Chat.ID, userID)
	case CmdBuyAccounts:
		b.sendWithMarkup(msg.Chat.ID, "Buy Accounts\n\nChoose an account type to purchase:", servicesKeyboard())
	case CmdServiceMenu:
		b.sendServiceMenu(msg.Chat.ID, act.Service)
	case CmdGetCodeMenu:
		b.sendWithMarkup(msg.Chat.ID, "Get Code Menu\n\nChoose an option below to get verification codes:", codeMenuKeyboard())
	case CmdBalance:
		balance, err := b.shop.Balance(userID)
		if err != nil {
			b.sendInternalError(msg.Chat.ID, err)
			return
		}
		b.send(msg.Chat.ID, fmt.Sprintf("Your Current Balance: %.2f", balance))
	case CmdDeposit:
		b.sendWithMarkup(msg.Chat.ID, "Deposit Funds\n\nChoose a deposit method:", depositMethodKeyboard())
	case CmdDepositMethod:
		b.setPending(userID, pendingInput{kind: inputDepositAmount, method: act.Method})
		b.send(msg.Chat.ID, fmt.Sprintf("Please send the amount you want to deposit via %s.", act.Method))
	case CmdReferral:
		b.sendReferralInfo(msg.Chat.ID, userID)
	case CmdSpecialOffers:
		b.sendSpecialOffers(msg.Chat.ID)
	case CmdSupport:
		b.sendSupport(msg.Chat.ID)
	case CmdAbout:
		b.sendAbout(msg.Chat.ID)
	default:
		b.handleAdminAction(msg, act)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logging.Logg.Warn("Failed to answer callback", "error", err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID

	act := ParseCallback(cq.Data)
	switch act.Cmd {
	case CmdMainMenu:
		b.sendMainMenu(chatID, userID)
	case CmdGetCodeMenu:
		b.sendWithMarkup(chatID, "Get Code Menu\n\nChoose an option below to get verification codes:", codeMenuKeyboard())
	case CmdStartCodeSession:
		b.startCodeSession(chatID, userID, act.CodeService)
	case CmdCodeLinks:
		b.sendWithMarkup(chatID, "External Code Services\n\nHere are some trusted external code services:", codeLinksKeyboard())
	case CmdShowFormat:
		b.send(chatID, formatGuideText())
	case CmdCodeHelp:
		b.send(chatID, b.codeHelpText())
	case CmdContactSupport:
		b.sendSupport(chatID)
	case CmdBuy:
		b.processPurchase(chatID, userID, act.Service, act.Quantity)
	case CmdCustomQuantity:
		b.setPending(userID, pendingInput{kind: inputCustomQuantity, service: act.Service})
		b.send(chatID, fmt.Sprintf("Please enter the quantity of %s accounts you want to purchase:", ServiceName(act.Service)))
	case CmdCancelOrder:
		b.send(chatID, "Order cancelled.")
	default:
		logging.Logg.Warn("Unknown callback", "data", cq.Data)
	}
}

func (b *Bot) handlePendingInput(msg *tgbotapi.Message) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	pending := b.getPending(userID)

	switch pending.kind {
	case inputDepositAmount:
		amount, err := strconv.ParseFloat(text, 64)
		if err != nil {
			b.send(msg.Chat.ID, "Please enter a valid amount.")
			return
		}
		if _, err := b.shop.StartDeposit(userID, amount, pending.method); err != nil {
			b.send(msg.Chat.ID, "Amount must be a positive number.")
			return
		}
		b.send(msg.Chat.ID, fmt.Sprintf(
			"Deposit request submitted!\n\nAmount: %.2f\nMethod: %s\n\n"+
				"Please send the amount to our %s account and reply with your transaction ID.\n\n"+
				"Your request will be processed within 24 hours.",
			amount, pending.method, pending.method))
		b.setPending(userID, pendingInput{kind: inputTransactionID, method: pending.method, amount: amount})

	case inputTransactionID:
		requestID, err := b.shop.AttachTransactionID(userID, text)
		if err != nil {
			b.send(msg.Chat.ID, "No pending deposit request found. Please start a new deposit.")
			b.clearPending(userID)
			return
		}
		b.send(msg.Chat.ID, "Transaction ID recorded!\n\nYour deposit request is now pending approval.\nYou will be notified once it's processed.")
		b.notifyAdmins(fmt.Sprintf(
			"New Deposit Request\n\nUser: %s (ID: %d)\nAmount: %.2f\nMethod: %s\nTransaction ID: %s\n\nUse /approve %d or /reject %d to process.",
			msg.From.UserName, userID, pending.amount, pending.method, text, requestID, requestID))
		b.clearPending(userID)

	case inputCustomQuantity:
		qty, err := strconv.Atoi(text)
		if err != nil || qty <= 0 {
			b.send(msg.Chat.ID, "Please enter a valid quantity.")
			return
		}
		b.clearPending(userID)
		b.processPurchase(msg.Chat.ID, userID, pending.service, qty)

	case inputBroadcastDraft, inputAddBalance, inputSendMessage, inputViewUser, inputUploadStock:
		b.handleAdminInput(msg, pending)

	default:
		b.sendWithMarkup(msg.Chat.ID,
			"Invalid Command\n\nPlease select a valid option from the menu:",
			mainKeyboard(b.isAdmin(userID)))
	}
}

func (b *Bot) sendMainMenu(chatID, userID int64) {
	b.sendWithMarkup(chatID, "Main Menu", mainKeyboard(b.isAdmin(userID)))
}

func (b *Bot) sendServiceMenu(chatID int64, svc model.Service) {
	quote, err := b.shop.Quote(svc, 1)
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	count, err := b.store.Count(svc)
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}

	text := fmt.Sprintf("%s Accounts\nStock: %d\nPrice: %.2f per account\n\nSelect quantity:",
		ServiceName(svc), count, quote.UnitPrice)
	b.sendWithMarkup(chatID, text, serviceBuyKeyboard(svc, quote.UnitPrice))
}

func (b *Bot) processPurchase(chatID, userID int64, svc model.Service, qty int) {
	result, err := b.shop.Purchase(userID, svc, qty)
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		quote, qerr := b.shop.Quote(svc, qty)
		balance, berr := b.shop.Balance(userID)
		if qerr != nil || berr != nil {
			b.send(chatID, "Insufficient balance. Please deposit first.")
			return
		}
		b.send(chatID, fmt.Sprintf(
			"Insufficient balance.\n\nOrder total: %.2f\nYour balance: %.2f\nShort by: %.2f\n\nPlease deposit first.",
			quote.Total, balance, quote.Total-balance))
		return
	case errors.Is(err, store.ErrInsufficientStock):
		count, cerr := b.store.Count(svc)
		if cerr != nil {
			b.send(chatID, "Not enough stock for this order.")
			return
		}
		b.send(chatID, fmt.Sprintf(
			"Not enough stock.\n\nRequested: %d\nAvailable: %d\n\nPlease try a smaller quantity.", qty, count))
		return
	case err != nil:
		b.sendInternalError(chatID, err)
		return
	}

	path, err := stockfile.WriteDelivery(result.Rows)
	if err != nil {
		logging.Logg.Error("Failed to build delivery file", "error", err)
		b.sendInternalError(chatID, err)
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("%s x%d", ServiceName(svc), qty)
	if _, err := b.api.Send(doc); err != nil {
		logging.Logg.Error("Failed to deliver purchase file", "chat_id", chatID, "error", err)
	}

	balance, _ := b.shop.Balance(userID)
	receipt := fmt.Sprintf("Purchase successful!\n\nService: %s\nQuantity: %d\nUnit price: %.2f",
		ServiceName(svc), qty, result.UnitPrice)
	if result.DiscountPercent > 0 {
		receipt += fmt.Sprintf("\nDiscount: %.0f%%", result.DiscountPercent)
	}
	receipt += fmt.Sprintf("\nTotal: %.2f\nNew balance: %.2f", result.Total, balance)
	b.send(chatID, receipt)
}

func (b *Bot) startCodeSession(chatID, userID int64, cs model.CodeService) {
	sess := b.sessions.Start(userID, cs)
	minutes := int(b.sessions.Timeout(cs).Minutes())

	var format, example string
	if cs == model.CodeHotmail {
		format = "email|password|token|client_id"
		example = "example@outlook.com|yourpassword|yourtoken|yourclientid"
	} else {
		format = "a valid Gmail address"
		example = "example@gmail.com"
	}

	b.send(chatID, fmt.Sprintf(
		"Format Guide\n\nSend your credentials as: %s\nExample: %s\n\n"+
			"Your Session Code: %s\nSession expires in %d minutes.\n\n"+
			"Send your credentials now to receive the verification code.",
		format, example, sess.Code, minutes))
}

func (b *Bot) handleCodePayload(msg *tgbotapi.Message, cs model.CodeService) {
	userID := msg.From.ID
	payload := strings.TrimSpace(msg.Text)

	// One attempt per session, whatever the outcome.
	defer b.sessions.Clear(userID)

	if err := b.codes.Validate(cs, payload); err != nil {
		var hint string
		if cs == model.CodeHotmail {
			hint = "Please use the format: email|password|token|client_id"
		} else {
			hint = "Please provide a valid Gmail address"
		}
		b.sendWithMarkup(msg.Chat.ID, "Invalid Format\n\n"+hint, codeActionKeyboard(cs, true))
		return
	}

	email := payload
	if cs == model.CodeHotmail {
		email = payload[:strings.Index(payload, "|")]
	}
	b.send(msg.Chat.ID, fmt.Sprintf(
		"Email: %s\nChecking for verification codes via API... This may take a few moments.", email))

	result, err := b.codes.FetchCode(context.Background(), cs, payload)
	if err != nil {
		b.sendWithMarkup(msg.Chat.ID,
			"There was an error accessing your messages. Please try again later or contact support if the issue persists.",
			codeActionKeyboard(cs, true))
		return
	}

	if result.Code != "" {
		b.sendWithMarkup(msg.Chat.ID, fmt.Sprintf(
			"Email: %s\nVerification Code: %s\nCode Validity: 10 minutes\n\n"+
				"Use this code immediately as it will expire soon. Never share this code with anyone.",
			email, result.Code), codeActionKeyboard(cs, false))
		return
	}

	b.sendWithMarkup(msg.Chat.ID, fmt.Sprintf(
		"Error: %s\n\nPlease make sure:\n- You have received a code recently\n- Your credentials are correct\n- Your account is accessible",
		result.Message), codeActionKeyboard(cs, true))
}

func (b *Bot) sendReferralInfo(chatID, userID int64) {
	stats, err := b.store.ReferralStats(userID)
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	user, err := b.store.GetUserByID(userID)
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}

	link := fmt.Sprintf("https://t.me/%s?start=%s", b.api.Self.UserName, user.ReferralCode)
	b.send(chatID, fmt.Sprintf(
		"Your Referral Stats:\nTotal Referrals: %d\nTotal Earnings: %.2f\nPending Rewards: %d\n\n"+
			"Bonus Rates:\nYou earn: %.2f per referral\nYour friend gets: %.2f welcome bonus\n\n"+
			"Your Referral Link: %s\n\nShare the link — when a friend joins through it, you both get the bonus.",
		stats.TotalReferrals, stats.TotalEarnings, stats.PendingRewards,
		stats.Settings.ReferrerBonus, stats.Settings.ReferredBonus, link))
}

func (b *Bot) sendSpecialOffers(chatID int64) {
	tiers, err := b.store.DiscountTiers()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	if len(tiers) == 0 {
		b.send(chatID, "Special Offers\n\nNo current discounts.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Special Offers\n\n")
	for _, t := range tiers {
		fmt.Fprintf(&sb, "%d+ pieces: %.0f%% discount\n", t.MinQuantity, t.Percent)
	}
	sb.WriteString("\nBuy more, save more!")
	b.send(chatID, sb.String())
}

func (b *Bot) sendSupport(chatID int64) {
	text := "Support\n\nFor any assistance, please contact our support team:"
	for _, contact := range b.cfg.SupportContacts {
		text += "\n" + contact
	}
	text += "\n\nWe're here to help you 24/7!"
	b.send(chatID, text)
}

func (b *Bot) sendAbout(chatID int64) {
	b.send(chatID, `About Account Verification Bot

We provide premium accounts and verification codes for:
- Hotmail accounts
- Outlook accounts
- FB Gmail accounts
- Verification codes

Features: 24/7 active service, guaranteed accounts, fast delivery.
Contact our support for any questions!`)
}

func (b *Bot) codeHelpText() string {
	return fmt.Sprintf(`Code Help Center

1. How to get codes?
   - Open Get Code and select a service
   - Send your credentials in the provided format
   - The bot fetches the code automatically
2. Session timeout?
   - Hotmail/Outlook: 15 minutes
   - Gmail: 10 minutes
3. Credentials safe?
   - Only used for code retrieval, never stored permanently
4. Not getting codes?
   - Check your credentials and contact support if needed

Support: %s`, strings.Join(b.cfg.SupportContacts, ", "))
}

func formatGuideText() string {
	return `Code Format Guide

Hotmail/Outlook Format: email|password|token|client_id

Gmail Format: a valid Gmail address

Note: Hotmail/Outlook needs the full credential tuple, Gmail only the address.`
}

func (b *Bot) sendInternalError(chatID int64, err error) {
	logging.Logg.Error("Internal error", "error", err)
	b.send(chatID, "Something went wrong, please try again later.")
}

func (b *Bot) notifyAdmins(text string) {
	for _, adminID := range b.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		if _, err := b.api.Send(msg); err != nil {
			// One unreachable admin must not stop the rest.
			logging.Logg.Error("Failed to notify admin", "admin_id", adminID, "error", err)
		}
	}
}
