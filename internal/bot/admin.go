package bot

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mailshop/internal/logging"
	"mailshop/internal/model"
	"mailshop/internal/shop"
	"mailshop/internal/stockfile"
	"mailshop/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleAdminAction routes admin menu presses. Non-admins pressing an
// admin button by typing its label get the same denial as commands.
func (b *Bot) handleAdminAction(msg *tgbotapi.Message, act Action) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.send(msg.Chat.ID, "Access Denied. You don't have permission to use this command.")
		return
	}
	chatID := msg.Chat.ID

	switch act.Cmd {
	case CmdAdminPanel, CmdBackToAdmin:
		b.clearPending(userID)
		b.sendWithMarkup(chatID, "Admin Panel", adminPanelKeyboard())
	case CmdUploadStock:
		b.setPending(userID, pendingInput{kind: inputUploadStock, service: act.Service})
		b.send(chatID, fmt.Sprintf(
			"Upload %s Stock\n\nSend an .xlsx file with the columns:\n%s\n\nThe first row is treated as the header and skipped.",
			ServiceName(act.Service), strings.Join(stockfile.Headers(act.Service), " | ")))
	case CmdRemoveFilesMenu:
		b.sendWithMarkup(chatID, "Remove Files\n\nChoose which stock to clear:", removeFilesKeyboard())
	case CmdRemoveStock:
		removed, err := b.store.ClearStock(act.Service)
		if err != nil {
			b.sendInternalError(chatID, err)
			return
		}
		b.sendWithMarkup(chatID,
			fmt.Sprintf("Cleared %s stock. Removed %d accounts.", ServiceName(act.Service), removed),
			adminPanelKeyboard())
	case CmdUpdateStocks:
		b.sendStockReport(chatID)
	case CmdSetPrices:
		b.sendPriceReport(chatID)
	case CmdPendingDeposits:
		b.sendPendingDeposits(chatID)
	case CmdBroadcast:
		b.setPending(userID, pendingInput{kind: inputBroadcastDraft})
		b.send(chatID, "Broadcast\n\nSend the message you want to broadcast to all users:")
	case CmdConfirmBroadcast:
		b.confirmBroadcast(chatID, userID)
	case CmdEditBroadcast:
		b.setPending(userID, pendingInput{kind: inputBroadcastDraft})
		b.send(chatID, "Send the new broadcast message:")
	case CmdCancelBroadcast:
		b.clearPending(userID)
		b.sendWithMarkup(chatID, "Broadcast cancelled.", adminPanelKeyboard())
	case CmdManageUsers:
		b.sendWithMarkup(chatID, "Manage Users\n\nChoose an action:", manageUsersKeyboard())
	case CmdAddBalance:
		b.setPending(userID, pendingInput{kind: inputAddBalance})
		b.send(chatID, "Add Balance\n\nSend: <user_id> <amount>")
	case CmdSendMessage:
		b.setPending(userID, pendingInput{kind: inputSendMessage})
		b.send(chatID, "Send Message\n\nSend: <user_id> <message>")
	case CmdViewUser:
		b.setPending(userID, pendingInput{kind: inputViewUser})
		b.send(chatID, "View User Info\n\nSend the user id:")
	case CmdDiscountSettings:
		b.sendDiscountReport(chatID)
	case CmdReferralSettings:
		b.sendReferralReport(chatID)
	default:
		b.sendWithMarkup(chatID,
			"Invalid Command\n\nPlease select a valid option from the menu:",
			mainKeyboard(true))
	}
}

// handleAdminInput consumes the free-text step of an admin flow.
func (b *Bot) handleAdminInput(msg *tgbotapi.Message, pending pendingInput) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.clearPending(userID)
		b.send(msg.Chat.ID, "Access Denied. You don't have permission to use this command.")
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch pending.kind {
	case inputBroadcastDraft:
		b.setPending(userID, pendingInput{kind: inputBroadcastDraft, draft: text})
		b.sendWithMarkup(chatID,
			fmt.Sprintf("Broadcast Preview\n\n%s\n\nSend this message to all users?", text),
			broadcastKeyboard())

	case inputAddBalance:
		parts := strings.Fields(text)
		if len(parts) != 2 {
			b.send(chatID, "Usage: <user_id> <amount>")
			return
		}
		targetID, err1 := strconv.ParseInt(parts[0], 10, 64)
		amount, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			b.send(chatID, "Usage: <user_id> <amount>")
			return
		}
		if err := b.shop.Credit(targetID, amount); err != nil {
			switch {
			case errors.Is(err, shop.ErrInvalidAmount):
				b.send(chatID, "Amount must be a positive number.")
			case errors.Is(err, store.ErrUserNotFound):
				b.send(chatID, fmt.Sprintf("User %d not found.", targetID))
			default:
				b.sendInternalError(chatID, err)
			}
			return
		}
		b.clearPending(userID)
		b.sendWithMarkup(chatID,
			fmt.Sprintf("Added %.2f to user %d.", amount, targetID), adminPanelKeyboard())
		b.send(targetID, fmt.Sprintf("Your balance has been credited with %.2f by an administrator.", amount))

	case inputSendMessage:
		parts := strings.SplitN(text, " ", 2)
		if len(parts) != 2 {
			b.send(chatID, "Usage: <user_id> <message>")
			return
		}
		targetID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			b.send(chatID, "Usage: <user_id> <message>")
			return
		}
		b.clearPending(userID)
		b.send(targetID, "Message from admin:\n\n"+parts[1])
		b.sendWithMarkup(chatID, fmt.Sprintf("Message sent to user %d.", targetID), adminPanelKeyboard())

	case inputViewUser:
		targetID, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.send(chatID, "Send a numeric user id.")
			return
		}
		user, err := b.store.GetUserByID(targetID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				b.send(chatID, fmt.Sprintf("User %d not found.", targetID))
			} else {
				b.sendInternalError(chatID, err)
			}
			return
		}
		b.clearPending(userID)
		referredBy := "none"
		if user.ReferredBy != nil {
			referredBy = strconv.FormatInt(*user.ReferredBy, 10)
		}
		b.sendWithMarkup(chatID, fmt.Sprintf(
			"User Info\n\nID: %d\nUsername: %s\nBalance: %.2f\nReferral Code: %s\nReferred By: %s\nTotal Referrals: %d\nJoined: %s",
			user.ID, user.Username, user.Balance, user.ReferralCode, referredBy,
			user.TotalReferrals, user.CreatedAt.Format("2006-01-02 15:04")),
			adminPanelKeyboard())

	case inputUploadStock:
		b.send(chatID, fmt.Sprintf(
			"Waiting for a %s stock file. Please send an .xlsx document, or press %s to abort.",
			ServiceName(pending.service), btnBackToAdmin))

	default:
		b.sendWithMarkup(chatID,
			"Invalid Command\n\nPlease select a valid option from the menu:",
			mainKeyboard(true))
	}
}

func (b *Bot) confirmBroadcast(chatID, adminID int64) {
	pending := b.getPending(adminID)
	if pending.kind != inputBroadcastDraft || pending.draft == "" {
		b.send(chatID, "No broadcast draft. Press Broadcast to start one.")
		return
	}
	b.clearPending(adminID)

	broadcastID, err := b.store.SaveBroadcast(adminID, pending.draft)
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	ids, err := b.store.AllUserIDs()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}

	sent := 0
	for _, id := range ids {
		msg := tgbotapi.NewMessage(id, pending.draft)
		if _, err := b.api.Send(msg); err != nil {
			// Blocked or deleted accounts fail individually.
			logging.Logg.Warn("Broadcast delivery failed", "user_id", id, "error", err)
			continue
		}
		sent++
	}
	if err := b.store.UpdateBroadcastCount(broadcastID, sent); err != nil {
		logging.Logg.Error("Failed to record broadcast count", "broadcast_id", broadcastID, "error", err)
	}

	b.sendWithMarkup(chatID,
		fmt.Sprintf("Broadcast complete.\n\nDelivered: %d/%d users.", sent, len(ids)),
		adminPanelKeyboard())
}

// handleDocument accepts stock spreadsheets from admins. Documents from
// anyone else, or outside an upload flow, are ignored with a hint.
func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.isAdmin(userID) {
		b.send(msg.Chat.ID, "Access Denied. You don't have permission to use this command.")
		return
	}
	pending := b.getPending(userID)
	if pending.kind != inputUploadStock {
		b.send(msg.Chat.ID, "To upload stock, open the Admin Panel and choose which service to upload first.")
		return
	}

	ext := strings.ToLower(filepath.Ext(msg.Document.FileName))
	if ext != ".xlsx" && ext != ".xls" {
		b.send(msg.Chat.ID, "Unsupported file type. Please send an .xlsx spreadsheet.")
		return
	}

	path, err := b.downloadDocument(msg.Document.FileID, ext)
	if err != nil {
		logging.Logg.Error("Failed to download stock file", "error", err)
		b.send(msg.Chat.ID, "Failed to download the file. Please try again.")
		return
	}
	defer os.Remove(path)

	rows, err := stockfile.ReadRows(path)
	if err != nil {
		if errors.Is(err, stockfile.ErrNoDataRows) {
			b.send(msg.Chat.ID, "The spreadsheet has no data rows below the header.")
		} else {
			b.send(msg.Chat.ID, "Could not read the spreadsheet. Make sure it is a valid .xlsx file.")
		}
		return
	}

	inserted, err := b.store.AppendStock(pending.service, rows)
	if err != nil {
		b.sendInternalError(msg.Chat.ID, err)
		return
	}
	b.clearPending(userID)

	count, _ := b.store.Count(pending.service)
	b.sendWithMarkup(msg.Chat.ID, fmt.Sprintf(
		"Stock uploaded!\n\nService: %s\nAdded: %d accounts\nTotal in stock: %d",
		ServiceName(pending.service), inserted, count), adminPanelKeyboard())
}

func (b *Bot) downloadDocument(fileID, ext string) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "stock-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (b *Bot) sendStockReport(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Current Stocks\n\n")
	for _, svc := range model.Services() {
		count, err := b.store.Count(svc)
		if err != nil {
			b.sendInternalError(chatID, err)
			return
		}
		fmt.Fprintf(&sb, "%s: %d accounts\n", ServiceName(svc), count)
	}
	b.send(chatID, sb.String())
}

func (b *Bot) sendPriceReport(chatID int64) {
	prices, err := b.store.Prices()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("Current Prices\n\n")
	for _, svc := range model.Services() {
		fmt.Fprintf(&sb, "%s: %.2f\n", ServiceName(svc), prices[svc])
	}
	sb.WriteString("\nTo change a price:\n/setprice <service> <price>\nServices: hotmail, outlook, fb_gmail")
	b.send(chatID, sb.String())
}

func (b *Bot) sendPendingDeposits(chatID int64) {
	deposits, err := b.store.PendingDeposits()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	if len(deposits) == 0 {
		b.send(chatID, "Pending Deposits\n\nNo pending deposit requests.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Pending Deposits\n\n")
	for _, d := range deposits {
		txn := d.TransactionID
		if txn == "" {
			txn = "not provided"
		}
		fmt.Fprintf(&sb, "Request #%d\nUser: %s (ID: %d)\nAmount: %.2f\nMethod: %s\nTransaction ID: %s\n\n",
			d.ID, d.Username, d.UserID, d.Amount, d.Method, txn)
	}
	sb.WriteString("Use /approve <id> or /reject <id> to process.")
	b.send(chatID, sb.String())
}

func (b *Bot) sendDiscountReport(chatID int64) {
	tiers, err := b.store.DiscountTiers()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("Discount Settings\n\n")
	if len(tiers) == 0 {
		sb.WriteString("No discount tiers configured.\n")
	}
	for _, t := range tiers {
		fmt.Fprintf(&sb, "%d+ pieces: %.0f%%\n", t.MinQuantity, t.Percent)
	}
	sb.WriteString("\n/adddiscount <min_quantity> <percent>\n/removediscount <min_quantity>")
	b.send(chatID, sb.String())
}

func (b *Bot) sendReferralReport(chatID int64) {
	settings, err := b.store.GetReferralSettings()
	if err != nil {
		b.sendInternalError(chatID, err)
		return
	}
	b.send(chatID, fmt.Sprintf(
		"Referral Settings\n\nReferrer bonus: %.2f\nReferred bonus: %.2f\n\n/setreferral <referrer_bonus> <referred_bonus>",
		settings.ReferrerBonus, settings.ReferredBonus))
}

func (b *Bot) setPriceCommand(msg *tgbotapi.Message) {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		b.send(msg.Chat.ID, "Usage: /setprice <service> <price>\nServices: hotmail, outlook, fb_gmail")
		return
	}
	svc := model.Service(parts[0])
	price, err := strconv.ParseFloat(parts[1], 64)
	if !svc.Valid() || err != nil || price <= 0 {
		b.send(msg.Chat.ID, "Usage: /setprice <service> <price>\nServices: hotmail, outlook, fb_gmail")
		return
	}

	if err := b.store.SetPrice(svc, price); err != nil {
		b.sendInternalError(msg.Chat.ID, err)
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Price for %s set to %.2f.", ServiceName(svc), price))
}

func (b *Bot) approveDepositCommand(msg *tgbotapi.Message) {
	b.resolveDepositCommand(msg, true)
}

func (b *Bot) rejectDepositCommand(msg *tgbotapi.Message) {
	b.resolveDepositCommand(msg, false)
}

func (b *Bot) resolveDepositCommand(msg *tgbotapi.Message, approve bool) {
	name := "/approve"
	if !approve {
		name = "/reject"
	}
	requestID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		b.send(msg.Chat.ID, fmt.Sprintf("Usage: %s <request_id>", name))
		return
	}

	req, err := b.shop.ResolveDeposit(requestID, approve)
	if err != nil {
		if errors.Is(err, store.ErrDepositNotFound) {
			b.send(msg.Chat.ID, fmt.Sprintf("Request #%d not found or already processed.", requestID))
		} else {
			b.sendInternalError(msg.Chat.ID, err)
		}
		return
	}

	if approve {
		b.send(msg.Chat.ID, fmt.Sprintf("Deposit #%d approved. Credited %.2f to user %d.",
			req.ID, req.Amount, req.UserID))
		b.send(req.UserID, fmt.Sprintf(
			"Deposit Approved!\n\nAmount: %.2f\nMethod: %s\n\nYour balance has been updated.",
			req.Amount, req.Method))
	} else {
		b.send(msg.Chat.ID, fmt.Sprintf("Deposit #%d rejected.", req.ID))
		b.send(req.UserID, fmt.Sprintf(
			"Deposit Rejected\n\nAmount: %.2f\nMethod: %s\n\nPlease contact support if you believe this is a mistake.",
			req.Amount, req.Method))
	}
}

func (b *Bot) addDiscountCommand(msg *tgbotapi.Message) {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		b.send(msg.Chat.ID, "Usage: /adddiscount <min_quantity> <percent>")
		return
	}
	minQty, err1 := strconv.Atoi(parts[0])
	percent, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || minQty <= 0 || percent <= 0 || percent >= 100 {
		b.send(msg.Chat.ID, "Usage: /adddiscount <min_quantity> <percent>")
		return
	}

	if err := b.store.SetDiscountTier(minQty, percent); err != nil {
		b.sendInternalError(msg.Chat.ID, err)
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Discount set: %d+ pieces get %.0f%% off.", minQty, percent))
}

func (b *Bot) removeDiscountCommand(msg *tgbotapi.Message) {
	minQty, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || minQty <= 0 {
		b.send(msg.Chat.ID, "Usage: /removediscount <min_quantity>")
		return
	}

	if err := b.store.RemoveDiscountTier(minQty); err != nil {
		b.sendInternalError(msg.Chat.ID, err)
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Discount tier for %d+ pieces removed.", minQty))
}

func (b *Bot) setReferralCommand(msg *tgbotapi.Message) {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		b.send(msg.Chat.ID, "Usage: /setreferral <referrer_bonus> <referred_bonus>")
		return
	}
	referrer, err1 := strconv.ParseFloat(parts[0], 64)
	referred, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || referrer < 0 || referred < 0 {
		b.send(msg.Chat.ID, "Usage: /setreferral <referrer_bonus> <referred_bonus>")
		return
	}

	if err := b.store.SetReferralSettings(referrer, referred); err != nil {
		b.sendInternalError(msg.Chat.ID, err)
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf(
		"Referral settings updated.\nReferrer bonus: %.2f\nReferred bonus: %.2f", referrer, referred))
}
