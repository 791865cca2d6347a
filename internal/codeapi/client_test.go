package codeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"mailshop/internal/model"
)

func TestValidate(t *testing.T) {
	c := NewClient("http://hotmail.test", "http://gmail.test")

	tests := []struct {
		name    string
		service model.CodeService
		payload string
		wantErr error
	}{
		{"hotmail full tuple", model.CodeHotmail, "a@outlook.com|pass|tok|cid", nil},
		{"hotmail missing field", model.CodeHotmail, "a@outlook.com|pass|tok", ErrInvalidFormat},
		{"hotmail empty field", model.CodeHotmail, "a@outlook.com||tok|cid", ErrInvalidFormat},
		{"hotmail extra field", model.CodeHotmail, "a|b|c|d|e", ErrInvalidFormat},
		{"gmail address", model.CodeGmail, "user.name+tag@gmail.com", nil},
		{"gmail wrong domain", model.CodeGmail, "user@yahoo.com", ErrInvalidFormat},
		{"gmail tuple payload", model.CodeGmail, "a@gmail.com|pass", ErrInvalidFormat},
		{"unknown service", model.CodeService("yahoo"), "whatever", ErrUnknownService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(tt.service, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchCodeSuccess(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"code":"123456","status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL).WithTimeout(2 * time.Second)
	res, err := c.FetchCode(context.Background(), model.CodeHotmail, "a@outlook.com|pass|tok|cid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != "123456" {
		t.Errorf("got code %q, want 123456", res.Code)
	}

	want := map[string]string{
		"email":     "a@outlook.com",
		"password":  "pass",
		"token":     "tok",
		"client_id": "cid",
	}
	for k, v := range want {
		if got := gotQuery.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
}

func TestFetchCodeGmailQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"code":"654321"}`))
	}))
	defer srv.Close()

	c := NewClient("http://unused.test", srv.URL).WithTimeout(2 * time.Second)
	res, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Code != "654321" {
		t.Errorf("got code %q, want 654321", res.Code)
	}
	if got := gotQuery.Get("email"); got != "user@gmail.com" {
		t.Errorf("query email = %q, want user@gmail.com", got)
	}
}

func TestFetchCodeBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"No recent code found","status":"error"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL).WithTimeout(2 * time.Second)
	res, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com")
	if err != nil {
		t.Fatalf("business failure must not be an error, got %v", err)
	}
	if res.Code != "" {
		t.Errorf("got code %q, want empty", res.Code)
	}
	if res.Message != "No recent code found" {
		t.Errorf("got message %q, want the endpoint's message", res.Message)
	}
}

func TestFetchCodeEmptyResponseGetsDefaultMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL).WithTimeout(2 * time.Second)
	res, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "Unknown error occurred" {
		t.Errorf("got message %q, want the default", res.Message)
	}
}

func TestFetchCodeInfrastructureFailures(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, srv.URL).WithTimeout(2 * time.Second)
		if _, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com"); err == nil {
			t.Error("expected an error for a 500 response")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, srv.URL).WithTimeout(2 * time.Second)
		if _, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com"); err == nil {
			t.Error("expected an error for an undecodable response")
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "http://127.0.0.1:1").WithTimeout(time.Second)
		if _, err := c.FetchCode(context.Background(), model.CodeGmail, "user@gmail.com"); err == nil {
			t.Error("expected an error for an unreachable endpoint")
		}
	})
}

func TestFetchCodeRejectsInvalidPayloadWithoutCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL)
	_, err := c.FetchCode(context.Background(), model.CodeHotmail, "not a tuple")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("got error %v, want ErrInvalidFormat", err)
	}
	if called {
		t.Error("endpoint must not be called for an invalid payload")
	}
}
