package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kursline/kursline/internal/app/model"
)

func TestClient_CreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Write([]byte(`{"pay_url":"https://pay.example.com/s/abc"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", 0)
	sess, err := client.CreateSession(context.Background(), &model.Transaction{
		ID:       "txn-1",
		Amount:   10_000,
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.PayURL != "https://pay.example.com/s/abc" {
		t.Errorf("unexpected pay url %q", sess.PayURL)
	}
	if sess.TransactionID != "txn-1" {
		t.Errorf("unexpected transaction id %q", sess.TransactionID)
	}
}

func TestClient_CreateSessionMissingPayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	_, err := client.CreateSession(context.Background(), &model.Transaction{ID: "txn-1"})
	if !errors.Is(err, ErrBadGatewayResponse) {
		t.Errorf("expected ErrBadGatewayResponse, got %v", err)
	}
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"captured"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	status, err := client.Status(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != model.SettlementCaptured {
		t.Errorf("expected captured, got %s", status)
	}
}

func TestClient_StatusUnknownValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"refunded"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	_, err := client.Status(context.Background(), "txn-1")
	if !errors.Is(err, ErrBadGatewayResponse) {
		t.Errorf("expected ErrBadGatewayResponse, got %v", err)
	}
}

func TestClient_StatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	_, err := client.Status(context.Background(), "txn-1")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}
}
