package bot

import (
	"fmt"

	"mailshop/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(btnBuyAccounts), tgbotapi.NewKeyboardButton(btnGetCode)},
		{tgbotapi.NewKeyboardButton(btnBalance), tgbotapi.NewKeyboardButton(btnDeposit)},
		{tgbotapi.NewKeyboardButton(btnReferral), tgbotapi.NewKeyboardButton(btnSpecialOffers)},
		{tgbotapi.NewKeyboardButton(btnSupport), tgbotapi.NewKeyboardButton(btnAbout)},
	}
	if isAdmin {
		rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnAdminPanel)})
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func servicesKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ServiceName(model.ServiceHotmail)),
			tgbotapi.NewKeyboardButton(ServiceName(model.ServiceOutlook)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ServiceName(model.ServiceFBGmail)),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func serviceBuyKeyboard(svc model.Service, price float64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("1 Pcs - %.2f", price), buyCallback(svc, 1)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("5 Pcs - %.2f", price*5), buyCallback(svc, 5)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Custom Quantity", customCallback(svc)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel),
		),
	)
}

func codeMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Hotmail/Outlook Code", cbHotmailCode)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Gmail Code", cbGmailCode)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("External Code Links", cbCodeLinks)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Format Guide", cbShowFormat)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Help Center", cbCodeHelp)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Main Menu", cbMainMenu)),
	)
}

func codeActionKeyboard(cs model.CodeService, isError bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if isError {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Try Again", retryCallback(cs))),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Contact Support", cbContactSupport)))
	} else {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Get Another Code", retryCallback(cs))))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Main Menu", cbMainMenu)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func codeLinksKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Hotmail/Outlook Code Service", "https://dongvanfb.net/read_mail_box/")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Premium Gmail Code (Tridib)", "https://tridib.codes")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("VIP Gmail Code (Abmeta)", "https://abmeta.store")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back to Code Menu", cbGetCodeMenu)),
	)
}

func depositMethodKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("BKash"),
			tgbotapi.NewKeyboardButton("Nagad"),
			tgbotapi.NewKeyboardButton("Rocket"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Bank Transfer"),
			tgbotapi.NewKeyboardButton("Card"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminPanelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Upload "+ServiceName(model.ServiceHotmail)),
			tgbotapi.NewKeyboardButton("Upload "+ServiceName(model.ServiceOutlook)),
			tgbotapi.NewKeyboardButton("Upload "+ServiceName(model.ServiceFBGmail)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRemoveFiles),
			tgbotapi.NewKeyboardButton(btnUpdateStocks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSetPrices),
			tgbotapi.NewKeyboardButton(btnPendingDeposits),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBroadcast),
			tgbotapi.NewKeyboardButton(btnManageUsers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDiscounts),
			tgbotapi.NewKeyboardButton(btnReferralConf),
			tgbotapi.NewKeyboardButton(btnMainMenu),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func removeFilesKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Remove "+ServiceName(model.ServiceHotmail)),
			tgbotapi.NewKeyboardButton("Remove "+ServiceName(model.ServiceOutlook)),
			tgbotapi.NewKeyboardButton("Remove "+ServiceName(model.ServiceFBGmail)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBackToAdmin),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func broadcastKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirmBcast),
			tgbotapi.NewKeyboardButton(btnEditBcast),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelBcast),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func manageUsersKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAddBalance),
			tgbotapi.NewKeyboardButton(btnSendMessage),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnViewUser),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
