package bot

import (
	"testing"

	"mailshop/internal/model"
)

func TestParseMenuText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Action
	}{
		{"buy accounts", "Buy Accounts", Action{Cmd: CmdBuyAccounts}},
		{"get code", "Get Code", Action{Cmd: CmdGetCodeMenu}},
		{"balance", "Balance", Action{Cmd: CmdBalance}},
		{"deposit", "Deposit", Action{Cmd: CmdDeposit}},
		{"service button", "Hotmail", Action{Cmd: CmdServiceMenu, Service: model.ServiceHotmail}},
		{"fb gmail button", "FB Gmail", Action{Cmd: CmdServiceMenu, Service: model.ServiceFBGmail}},
		{"deposit method", "BKash", Action{Cmd: CmdDepositMethod, Method: "BKash"}},
		{"upload stock", "Upload Outlook", Action{Cmd: CmdUploadStock, Service: model.ServiceOutlook}},
		{"remove stock", "Remove FB Gmail", Action{Cmd: CmdRemoveStock, Service: model.ServiceFBGmail}},
		{"upload unknown service", "Upload Yahoo", Action{Cmd: CmdUnknown}},
		{"admin panel", "Admin Panel", Action{Cmd: CmdAdminPanel}},
		{"back to admin", "Back to Admin Panel", Action{Cmd: CmdBackToAdmin}},
		{"main menu", "Main Menu", Action{Cmd: CmdMainMenu}},
		{"whitespace trimmed", "  Balance  ", Action{Cmd: CmdBalance}},
		{"free text", "hello there", Action{Cmd: CmdUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMenuText(tt.text); got != tt.want {
				t.Errorf("ParseMenuText(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Action
	}{
		{"main menu", "main_menu", Action{Cmd: CmdMainMenu}},
		{"hotmail code", "get_hotmail_code", Action{Cmd: CmdStartCodeSession, CodeService: model.CodeHotmail}},
		{"gmail code", "get_gmail_code", Action{Cmd: CmdStartCodeSession, CodeService: model.CodeGmail}},
		{"retry", "retry_hotmail", Action{Cmd: CmdStartCodeSession, CodeService: model.CodeHotmail}},
		{"retry bogus", "retry_yahoo", Action{Cmd: CmdUnknown}},
		{"buy simple", "buy_hotmail_5", Action{Cmd: CmdBuy, Service: model.ServiceHotmail, Quantity: 5}},
		{"buy service with underscore", "buy_fb_gmail_5", Action{Cmd: CmdBuy, Service: model.ServiceFBGmail, Quantity: 5}},
		{"buy bad quantity", "buy_hotmail_x", Action{Cmd: CmdUnknown}},
		{"buy unknown service", "buy_yahoo_5", Action{Cmd: CmdUnknown}},
		{"custom quantity", "custom_fb_gmail", Action{Cmd: CmdCustomQuantity, Service: model.ServiceFBGmail}},
		{"cancel", "cancel", Action{Cmd: CmdCancelOrder}},
		{"garbage", "whatever", Action{Cmd: CmdUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCallback(tt.data); got != tt.want {
				t.Errorf("ParseCallback(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	for _, svc := range model.Services() {
		got := ParseCallback(buyCallback(svc, 7))
		if got.Cmd != CmdBuy || got.Service != svc || got.Quantity != 7 {
			t.Errorf("buy round trip for %s = %+v", svc, got)
		}

		got = ParseCallback(customCallback(svc))
		if got.Cmd != CmdCustomQuantity || got.Service != svc {
			t.Errorf("custom round trip for %s = %+v", svc, got)
		}
	}

	for _, cs := range []model.CodeService{model.CodeHotmail, model.CodeGmail} {
		got := ParseCallback(retryCallback(cs))
		if got.Cmd != CmdStartCodeSession || got.CodeService != cs {
			t.Errorf("retry round trip for %s = %+v", cs, got)
		}
	}
}

func TestServiceName(t *testing.T) {
	for _, svc := range model.Services() {
		name := ServiceName(svc)
		if name == "" {
			t.Errorf("no display name for %s", svc)
		}
		back, ok := serviceByName(name)
		if !ok || back != svc {
			t.Errorf("serviceByName(%q) = %v %v, want %s", name, back, ok, svc)
		}
	}
}
