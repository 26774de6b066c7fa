package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/journal"
)

var configEnv = []string{
	"COLLECTOR_CONFIG",
	"FAKTUROID_APPLICATION_NAME", "FAKTUROID_EMAIL", "FAKTUROID_ACCOUNT",
	"FAKTUROID_CLIENT_ID", "FAKTUROID_CLIENT_SECRET", "FAKTUROID_BASE_URL",
	"SMTP_USER", "SMTP_PASSWORD", "SMTP_SERVER", "SMTP_PORT",
}

// isolate clears config variables so the developer's environment cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func writeConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	p := filepath.Join(dir, "config.ini")
	body := `[fakturoid]
application_name = "Collector"
email = "me@example.com"
account = "acme"
client_id = "cid"
client_secret = "csecret"
base_url = "` + baseURL + `"

[email]
smtp_user = "me@example.com"
smtp_password = "smtp-pw"
smtp_server = "smtp.example.com"
smtp_port = 465
`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &rootOptions{in: strings.NewReader("")}
	cmd := newRootCmd(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	opts.close()
	return out.String(), err
}

type fakeFakturoid struct {
	invoices map[int64]map[string]any

	created  []byte
	payments map[int64]string
}

func newFakeFakturoid(t *testing.T) (*fakeFakturoid, string) {
	t.Helper()
	f := &fakeFakturoid{
		invoices: map[int64]map[string]any{
			1: {"id": 1, "number": "2024-0001", "subject_id": 7, "client_name": "ACME", "status": "open", "total": "1000.0"},
			2: {"id": 2, "number": "2024-0002", "subject_id": 7, "client_name": "ACME", "status": "overdue", "total": "2000.0"},
			3: {"id": 3, "number": "2024-0003", "subject_id": 7, "client_name": "ACME", "status": "paid", "total": "3000.0"},
		},
		payments: map[int64]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok", "expires_in": 7200})
	})
	mux.HandleFunc("/accounts/acme/subjects.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "name": "ACME", "email": "billing@acme.test"},
			{"id": 8, "name": "Globex", "email": "ap@globex.test"},
		})
	})
	mux.HandleFunc("/accounts/acme/invoices.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			f.created, _ = io.ReadAll(r.Body)
			writeJSON(w, http.StatusCreated, map[string]any{
				"id": 10, "number": "2024-0010", "subject_id": 7, "status": "open", "total": "1210.0",
			})
			return
		}
		status := r.URL.Query().Get("status")
		out := []map[string]any{}
		for id := int64(1); id <= 3; id++ {
			inv := f.invoices[id]
			if status == "" || inv["status"] == status {
				out = append(out, inv)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	for id := int64(1); id <= 3; id++ {
		mux.HandleFunc("/accounts/acme/invoices/"+strconv.FormatInt(id, 10)+".json", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, f.invoices[id])
		})
		mux.HandleFunc("/accounts/acme/invoices/"+strconv.FormatInt(id, 10)+"/payments.json", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				PaidOn string `json:"paid_on"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.payments[id] = body.PaidOn
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd(&rootOptions{})

	paths := [][]string{
		{"clients", "list"},
		{"invoices", "list"},
		{"invoices", "issue"},
		{"invoices", "send"},
		{"invoices", "pay"},
		{"journal", "list"},
		{"journal", "show"},
		{"config", "show"},
		{"config", "setup"},
		{"config", "path"},
		{"version"},
	}
	for _, p := range paths {
		c, _, err := root.Find(p)
		if err != nil {
			t.Fatalf("Find(%v): %v", p, err)
		}
		if c.Name() != p[len(p)-1] {
			t.Errorf("Find(%v) = %q", p, c.Name())
		}
	}

	for _, flag := range []string{"debug", "config", "env-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestConfigPath_FlagWins(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "custom", "config.ini")
	t.Setenv("COLLECTOR_CONFIG", filepath.Join(dir, "env.ini"))

	out, err := runCLI(t, "config", "path", "--config", p, "--env-file", filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != p {
		t.Fatalf("path = %q, want %q", out, p)
	}

	if _, err := os.Stat(filepath.Join(dir, "custom", "logs", "collector.log")); err != nil {
		t.Fatalf("expected log next to config: %v", err)
	}
}

func TestConfigPath_DefaultUnderHome(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, "config", "path", "--env-file", filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, ".config", "money-collector", "config.ini")
	if strings.TrimSpace(out) != want {
		t.Fatalf("path = %q, want %q", out, want)
	}
}

func TestEnvFile_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	other := filepath.Join(dir, "from-file.ini")
	if err := os.WriteFile(envPath, []byte("COLLECTOR_CONFIG="+other+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// COLLECTOR_CONFIG is set (empty) by isolate; unset it so the file can fill it.
	os.Unsetenv("COLLECTOR_CONFIG")
	out, err := runCLI(t, "config", "path", "--env-file", envPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != other {
		t.Fatalf("path = %q, want %q", out, other)
	}

	explicit := filepath.Join(dir, "explicit.ini")
	t.Setenv("COLLECTOR_CONFIG", explicit)
	out, err = runCLI(t, "config", "path", "--env-file", envPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != explicit {
		t.Fatalf("path = %q, want %q", out, explicit)
	}
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeConfig(t, dir, "https://example.invalid")

	out, err := runCLI(t, "config", "show", "--config", cfgPath, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "csecret") || strings.Contains(out, "smtp-pw") {
		t.Fatalf("secrets leaked:\n%s", out)
	}

	var v configView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if v.Fakturoid.ClientSecret != "********" || v.Email.SMTPPassword != "********" {
		t.Errorf("secrets not masked: %+v", v)
	}
	if v.Email.CC != "me@example.com" {
		t.Errorf("cc = %q, want the smtp user", v.Email.CC)
	}
	if v.Defaults.Due != domain.DefaultDue {
		t.Errorf("due = %d", v.Defaults.Due)
	}
}

func TestConfigShow_Pretty(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeConfig(t, dir, "https://example.invalid")

	out, err := runCLI(t, "config", "show", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[fakturoid]", "[email]", "[defaults]", "client_secret", "********", "smtp_port          465"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClientsList_JSONAndQuery(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	out, err := runCLI(t, "clients", "list", "--config", cfgPath, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var subjects []domain.Subject
	if err := json.Unmarshal([]byte(out), &subjects); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(subjects) != 2 || subjects[0].Name != "ACME" {
		t.Fatalf("subjects = %+v", subjects)
	}

	out, err = runCLI(t, "clients", "list", "--config", cfgPath, "--query", "$[*].email")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "billing@acme.test\nap@globex.test" {
		t.Fatalf("query output = %q", out)
	}
}

func TestClientsList_InvalidConfigIsNotInteractive(t *testing.T) {
	dir := isolate(t)

	_, err := runCLI(t, "clients", "list", "--config", filepath.Join(dir, "missing.ini"))
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestInvoicesList_Unpaid(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	out, err := runCLI(t, "invoices", "list", "--config", cfgPath, "--client", "7", "--status", "unpaid", "--query", "$[*].number")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "2024-0001\n2024-0002" {
		t.Fatalf("unpaid = %q", out)
	}
}

func TestInvoicesList_RejectsUnknownStatus(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	_, err := runCLI(t, "invoices", "list", "--config", cfgPath, "--client", "7", "--status", "lost")
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestInvoicesIssue_FromDraft(t *testing.T) {
	dir := isolate(t)
	f, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	draft := filepath.Join(dir, "march.yaml")
	yml := "issued_on: 2024-03-31\ndue: 10\nlines:\n  - description: Backend work\n    quantity: 2\n    unit_name: MD\n    unit_price: 500\n"
	if err := os.WriteFile(draft, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "invoices", "issue", "--config", cfgPath, "--client", "7", "--from", draft, "--yes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Invoice 2024-0010 was issued.") {
		t.Fatalf("output:\n%s", out)
	}
	if n := strings.Count(out, "Total: 1 000,00 Kč"); n != 1 {
		t.Errorf("expected the total once, got %d:\n%s", n, out)
	}
	if strings.Contains(out, "Invoice total") {
		t.Errorf("total printed twice:\n%s", out)
	}

	var body struct {
		SubjectID int64  `json:"subject_id"`
		IssuedOn  string `json:"issued_on"`
		Due       int    `json:"due"`
		Lines     []struct {
			Name string `json:"name"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(f.created, &body); err != nil {
		t.Fatal(err)
	}
	if body.SubjectID != 7 || body.IssuedOn != "2024-03-31" || body.Due != 10 {
		t.Errorf("request = %+v", body)
	}
	if len(body.Lines) != 1 || body.Lines[0].Name != "Backend work za 03/2024" {
		t.Errorf("lines = %+v", body.Lines)
	}

	refs, err := journal.NewStore(dir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Action != domain.ActionIssued || refs[0].InvoiceNumber != "2024-0010" {
		t.Fatalf("journal = %+v", refs)
	}
}

func TestInvoicesIssue_UnknownClient(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	draft := filepath.Join(dir, "d.yaml")
	if err := os.WriteFile(draft, []byte("lines:\n  - quantity: 1\n    unit_price: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "invoices", "issue", "--config", cfgPath, "--client", "99", "--from", draft, "--yes")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInvoicesSend_RejectsInvoiceThatIsNotOpen(t *testing.T) {
	dir := isolate(t)
	_, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	_, err := runCLI(t, "invoices", "send", "--config", cfgPath, "--client", "7", "3")
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSelectOpen_SkipsDuplicateIDs(t *testing.T) {
	open := []domain.Invoice{{ID: 1, Number: "2024-0001"}, {ID: 4, Number: "2024-0004"}}

	got, err := selectOpen(open, []int64{4, 1, 4, 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 1 {
		t.Fatalf("selected = %+v", got)
	}

	_, err = selectOpen(open, []int64{1, 3}, 7)
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestInvoicesPay(t *testing.T) {
	dir := isolate(t)
	f, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	out, err := runCLI(t, "invoices", "pay", "2", "--config", cfgPath, "--paid-on", "2024-04-02")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Invoice 2024-0002 was paid at 2024-04-02!") {
		t.Fatalf("output:\n%s", out)
	}
	if f.payments[2] != "2024-04-02" {
		t.Fatalf("payments = %+v", f.payments)
	}

	refs, err := journal.NewStore(dir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].Action != domain.ActionPaid {
		t.Fatalf("journal = %+v", refs)
	}

	out, err = runCLI(t, "journal", "show", refs[0].ID, "--config", cfgPath, "--query", "$.details.paid_on")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "2024-04-02" {
		t.Fatalf("journal show = %q", out)
	}
}

func TestInvoicesPay_AlreadyPaid(t *testing.T) {
	dir := isolate(t)
	f, url := newFakeFakturoid(t)
	cfgPath := writeConfig(t, dir, url)

	_, err := runCLI(t, "invoices", "pay", "3", "--config", cfgPath)
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(f.payments) != 0 {
		t.Fatalf("payment recorded: %+v", f.payments)
	}
}

func TestInvoicesPay_BadDate(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "invoices", "pay", "2", "--paid-on", "02.04.2024")
	if !domain.IsKind(err, domain.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestJournalList_Empty(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, "journal", "list", "--config", filepath.Join(dir, "config.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "(journal is empty)" {
		t.Fatalf("output = %q", out)
	}

	_, err = runCLI(t, "journal", "show", "nope", "--config", filepath.Join(dir, "config.ini"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "collector ") {
		t.Fatalf("version = %q", out)
	}
}

func TestOutputFlags_UnsupportedFormat(t *testing.T) {
	f := outputFlags{format: "xml"}
	err := f.print(io.Discard, []int{1}, func() string { return "" })
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", " 22 "})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 22 {
		t.Fatalf("ids = %v", ids)
	}

	for _, bad := range []string{"abc", "0", "-3"} {
		if _, err := parseIDs([]string{bad}); !domain.IsKind(err, domain.KindInvalidInput) {
			t.Errorf("parseIDs(%q) = %v, want invalid input", bad, err)
		}
	}
}

func TestUnknownPlaceholders(t *testing.T) {
	e := domain.DefaultConfig().Email
	if got := unknownPlaceholders(e); len(got) != 0 {
		t.Fatalf("default templates flagged: %v", got)
	}

	e.Body = "Dear {{client}}, pay {{total}} within {{due}} days. {{iban}}"
	got := unknownPlaceholders(e)
	if len(got) != 1 || got[0] != "iban" {
		t.Fatalf("unknown = %v, want [iban]", got)
	}
}
