package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printJSON(&out, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if out.String() != expected {
		t.Fatalf("unexpected json output:\n%s", out.String())
	}
}

// runCLI executes the root command against srv and returns stdout.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if srv != nil {
		args = append([]string{"--url", srv.URL}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	asJSON = false
	return out.String(), err
}

func fakeAPI(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.RequestURI()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"failed to get supplier","message":"not found: supplier"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLedgerShow(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/api/v1/suppliers/sup-1": `{"success":true,"supplier":{
			"info":{"_id":"sup-1","name":"Bamburi","balance":1000,"currency":"KES"},
			"metrics":{"balance":1000,"ledgerBalance":1000,"entries":2},
			"ledger":{"partyId":"sup-1","entries":[
				{"date":"2024-01-05","description":"cement","debit":1300,"credit":0,"balance":1300,"sourceType":"invoice"},
				{"date":"2024-01-10","description":"payment","debit":0,"credit":300,"balance":1000,"sourceType":"transaction"}
			],"totals":{"totalDebit":1300,"totalCredit":300,"difference":1000}}}}`,
	})

	out, err := runCLI(t, srv, "ledger", "show", "supplier", "sup-1")
	if err != nil {
		t.Fatalf("ledger show: %v", err)
	}
	for _, want := range []string{"Bamburi (sup-1) balance 1000 KES", "invoice", "payment", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLedgerShow_Errors(t *testing.T) {
	srv := fakeAPI(t, nil)

	if _, err := runCLI(t, srv, "ledger", "show", "bank", "x"); err == nil {
		t.Fatal("expected an invalid kind to fail")
	}

	_, err := runCLI(t, srv, "ledger", "show", "supplier", "missing")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected a 404 error, got %v", err)
	}
}

func TestLedgerReconcile(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/api/v1/accounts/acc-1/reconcile": `{"success":true,"reconciliation":{"partyId":"acc-1","kind":"account","recordedBalance":250,"ledgerBalance":0,"difference":250,"reconciled":false}}`,
	})

	out, err := runCLI(t, srv, "ledger", "reconcile", "account", "acc-1")
	if err != nil {
		t.Fatalf("ledger reconcile: %v", err)
	}
	if !strings.Contains(out, "account acc-1: DIFFERS") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestReportCommands(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/api/v1/reports/income-statement?project_id=p1": `{"success":true,"incomeStatement":{"projectId":"p1","revenue":230000,"netProfit":222600}}`,
		"/api/v1/reports/totals":                         `{"success":true,"totals":{"totalDebit":41300,"totalCredit":236100,"totalBalance":-194800,"currency":"KES"}}`,
	})

	out, err := runCLI(t, srv, "report", "income", "--project", "p1")
	if err != nil {
		t.Fatalf("report income: %v", err)
	}
	if !strings.Contains(out, "230000") || !strings.Contains(out, "222600") {
		t.Fatalf("unexpected income output: %s", out)
	}

	out, err = runCLI(t, srv, "--json", "report", "totals")
	if err != nil {
		t.Fatalf("report totals: %v", err)
	}
	if !strings.Contains(out, `"totalBalance": -194800`) {
		t.Fatalf("unexpected totals output: %s", out)
	}
}

func TestReportReconcile(t *testing.T) {
	srv := fakeAPI(t, map[string]string{
		"/api/v1/reports/reconciliation?project_id=p1": `{"success":true,"reconciliation":{"projectId":"p1","totalParties":3,"reconciled":2,
			"discrepancies":[{"partyId":"acc-9","kind":"account","recordedBalance":250,"ledgerBalance":0,"difference":250,"reconciled":false}]}}`,
	})

	out, err := runCLI(t, srv, "report", "reconcile", "--project", "p1")
	if err != nil {
		t.Fatalf("report reconcile: %v", err)
	}
	for _, want := range []string{"2 of 3 parties reconciled", "acc-9", "250"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMigrateCommands(t *testing.T) {
	orig := migrator
	defer func() { migrator = orig }()

	var calls []string
	migrator = migrationRunner{
		up: func(databaseURL, path string, _ zerolog.Logger) error {
			calls = append(calls, "up "+databaseURL+" "+path)
			return nil
		},
		down: func(databaseURL, path string, _ zerolog.Logger) error {
			return errors.New("no migration")
		},
	}

	if _, err := runCLI(t, nil, "migrate", "up", "--database-url", "postgres://db", "--path", "m"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if len(calls) != 1 || calls[0] != "up postgres://db m" {
		t.Fatalf("unexpected calls %v", calls)
	}

	if _, err := runCLI(t, nil, "migrate", "down", "--database-url", "postgres://db"); err == nil {
		t.Fatal("expected migrate down error to propagate")
	}

	t.Setenv("DATABASE_URL", "")
	if _, err := runCLI(t, nil, "migrate", "up"); err == nil {
		t.Fatal("expected missing database url to fail")
	}
}
