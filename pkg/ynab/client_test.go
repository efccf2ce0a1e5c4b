package ynab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPayees(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/budgets/b1/payees" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"payees":[{"id":"p1","name":"Stock: Apple"},{"id":"p2","name":"Interest"}]}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	payees, err := client.Payees(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Payees: %v", err)
	}
	if len(payees) != 2 || payees[0].Name != "Stock: Apple" {
		t.Errorf("unexpected payees: %+v", payees)
	}
}

func TestCreateTransactionsPayload(t *testing.T) {
	var got TransactionsPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"transactions":[]}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	err := client.CreateTransactions(context.Background(), "b1", []Transaction{
		{AccountID: "a1", Date: "2024-01-15", Amount: 100000, PayeeName: "Deposit", Cleared: Cleared, ImportID: "T212-v14:abc"},
	})
	if err != nil {
		t.Fatalf("CreateTransactions: %v", err)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Amount != 100000 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"id":"401","name":"unauthorized","detail":"Unauthorized"}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "bad"})
	if _, err := client.Payees(context.Background(), "b1"); err == nil {
		t.Fatal("expected error, got none")
	}
}
