package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/qbtools/internal/app"
)

type harness struct {
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	stdin   string
	base    string
	queries []string
	server  *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	h := &harness{base: filepath.Join(t.TempDir(), "qb-api-cfg")}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/companyinfo/42"):
			fmt.Fprint(w, `{"CompanyInfo":{"Id":"1","CompanyName":"Acme"}}`)
		case strings.HasSuffix(r.URL.Path, "/query"):
			h.queries = append(h.queries, r.URL.Query().Get("query"))
			fmt.Fprint(w, `{"QueryResponse":{"Customer":[{"Id":"1","DisplayName":"Jane"}]}}`)
		case strings.HasSuffix(r.URL.Path, "/customer/1"):
			fmt.Fprint(w, `{"Customer":{"Id":"1","DisplayName":"Jane"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(h.server.Close)

	t.Setenv("QBTOOLS_CREDENTIALS__BASE_PATH", h.base)
	t.Setenv("QBTOOLS_API__BASE_URL", h.server.URL)
	t.Setenv("QBTOOLS_LOG_LEVEL", "error")

	return h
}

func (h *harness) writeCredentials(t *testing.T) {
	t.Helper()
	content := `{"company_id":"42","access_token":"a","refresh_token":"r","token_type":"bearer"}`
	require.NoError(t, os.WriteFile(h.base+".json", []byte(content), 0o600))
}

func (h *harness) run(args ...string) error {
	s := streams{in: strings.NewReader(h.stdin), out: &h.stdout, err: &h.stderr}
	return newRootCommand(s).Run(context.Background(), append([]string{"qbtools"}, args...))
}

func TestExportCustomers(t *testing.T) {
	h := newHarness(t)
	h.writeCredentials(t)

	err := h.run("-q", "export", "-f", "yaml", "customers", "--where", "Active = true")
	require.NoError(t, err)

	assert.Equal(t, "- DisplayName: Jane\n  Id: \"1\"\n", h.stdout.String())
	require.Len(t, h.queries, 1)
	assert.Equal(t, "select * from Customer where Active = true STARTPOSITION 1 MAXRESULTS 1000", h.queries[0])
}

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	h.writeCredentials(t)
	out := filepath.Join(t.TempDir(), "items.json")

	require.NoError(t, h.run("export", "-o", out, "items"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data), "no Item key in the response means no items")
	assert.Empty(t, h.stdout.String())
}

func TestGetCustomer(t *testing.T) {
	h := newHarness(t)
	h.writeCredentials(t)

	require.NoError(t, h.run("get", "-p", "customer", "1"))
	assert.Equal(t, "{\n  \"DisplayName\": \"Jane\",\n  \"Id\": \"1\"\n}\n", h.stdout.String())
}

func TestGetRequiresID(t *testing.T) {
	h := newHarness(t)
	h.writeCredentials(t)

	err := h.run("get", "customer")
	assert.ErrorContains(t, err, "expected exactly one ID argument")
}

func TestUnsupportedFormat(t *testing.T) {
	h := newHarness(t)
	h.writeCredentials(t)

	err := h.run("export", "-f", "xml", "items")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestMissingCredentialFile(t *testing.T) {
	h := newHarness(t)

	err := h.run("export", "items")
	require.Error(t, err)
	assert.Equal(t, app.ExitConfig, app.ExitCode(err))
	assert.FileExists(t, h.base+".json", "example config is seeded")
}

func TestConfigPath(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("config", "path"))
	assert.Equal(t, h.base+".json\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "not created yet")
}

func TestConfigExample(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("config", "example", "-f", "toml"))
	assert.Contains(t, h.stdout.String(), "token_type = 'bearer'")
}

func TestSecretSet(t *testing.T) {
	h := newHarness(t)
	secretFile := filepath.Join(t.TempDir(), "client-secret")
	t.Setenv("QBTOOLS_OAUTH__SECRET_STORAGE", "file")
	t.Setenv("QBTOOLS_OAUTH__SECRET_FILE", secretFile)
	h.stdin = "s3cret\n"

	require.NoError(t, h.run("secret", "set"))

	data, err := os.ReadFile(secretFile)
	require.NoError(t, err)
	assert.Equal(t, "s3cret\n", string(data))
}

func TestSecretSetRejectsEmpty(t *testing.T) {
	h := newHarness(t)
	t.Setenv("QBTOOLS_OAUTH__SECRET_STORAGE", "file")
	t.Setenv("QBTOOLS_OAUTH__SECRET_FILE", filepath.Join(t.TempDir(), "client-secret"))

	assert.Error(t, h.run("secret", "set"))
}
