package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florianilch/qbtools/internal/configstore"
	"github.com/florianilch/qbtools/internal/format"
)

// fakeIntuit serves the company and token endpoints. Only the access token "fresh" is accepted.
type fakeIntuit struct {
	api      *httptest.Server
	token    *httptest.Server
	requests atomic.Int32
	probes   atomic.Int32
	refresh  atomic.Int32
}

func newFakeIntuit(t *testing.T) *fakeIntuit {
	t.Helper()
	f := &fakeIntuit{}

	f.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"fault":{"error":[{"message":"AuthenticationFailed","code":"100"}],"type":"AUTHENTICATION"}}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/companyinfo/42"):
			f.probes.Add(1)
			fmt.Fprint(w, `{"CompanyInfo":{"Id":"1","CompanyName":"Acme"}}`)
		case strings.HasSuffix(r.URL.Path, "/query"):
			fmt.Fprint(w, `{"QueryResponse":{"Customer":[{"Id":"1","DisplayName":"Jane"},{"Id":"2","DisplayName":"John"}]}}`)
		case strings.HasSuffix(r.URL.Path, "/item/7"):
			fmt.Fprint(w, `{"Item":{"Id":"7","Name":"Widget"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.api.Close)

	f.token = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.refresh.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"r","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(f.token.Close)

	return f
}

func (f *fakeIntuit) newApp(t *testing.T, base string, stdout *bytes.Buffer) *App {
	t.Helper()

	cfg, err := Default()
	require.NoError(t, err)
	cfg.Quiet = true
	cfg.Credentials.BasePath = base
	cfg.API.BaseURL = f.api.URL
	cfg.OAuth.TokenURL = f.token.URL + "/oauth2/v1/tokens/bearer"
	cfg.OAuth.ClientID = "client-id"
	cfg.OAuth.ClientSecret = "client-secret"

	a, err := New(cfg, WithStdout(stdout), WithRunID("test-run"))
	require.NoError(t, err)
	return a
}

func writeCredentialFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestExportRefreshesAndPersists(t *testing.T) {
	f := newFakeIntuit(t)
	base := filepath.Join(t.TempDir(), "cfg")
	writeCredentialFile(t, base+".json",
		`{"company_id":"42","access_token":"stale","refresh_token":"r","token_type":"bearer"}`)

	var stdout bytes.Buffer
	a := f.newApp(t, base, &stdout)

	err := a.Export(context.Background(), EntityCustomer, "", Destination{Format: format.JSON})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.refresh.Load())
	assert.Zero(t, f.probes.Load(), "query runs right after refresh without a second probe")

	var customers []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &customers))
	assert.Len(t, customers, 2)
	assert.True(t, strings.HasSuffix(stdout.String(), "]\n"))

	stored, err := configstore.Decode(mustRead(t, base+".json"), format.JSON)
	require.NoError(t, err)
	assert.Equal(t, "42", stored.CompanyID)
	assert.Equal(t, "fresh", stored.Credential.AccessToken)
	assert.Equal(t, "r", stored.Credential.RefreshToken)
}

func TestGetWithValidCredential(t *testing.T) {
	f := newFakeIntuit(t)
	base := filepath.Join(t.TempDir(), "cfg")
	writeCredentialFile(t, base+".yaml",
		"company_id: \"42\"\naccess_token: fresh\nrefresh_token: r\ntoken_type: bearer\n")

	out := filepath.Join(t.TempDir(), "item.yaml")
	a := f.newApp(t, base, &bytes.Buffer{})

	err := a.Get(context.Background(), EntityItem, "7", Destination{Path: out, Format: format.YAML})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.probes.Load())
	assert.Zero(t, f.refresh.Load())
	assert.Equal(t, "Id: \"7\"\nName: Widget\n", string(mustRead(t, out)))
}

func TestMissingConfigSeedsExample(t *testing.T) {
	f := newFakeIntuit(t)
	base := filepath.Join(t.TempDir(), "cfg")
	a := f.newApp(t, base, &bytes.Buffer{})

	_, err := a.Connect(context.Background())
	require.ErrorIs(t, err, configstore.ErrNotFound)
	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.Contains(t, Guidance(err), "EXAMPLE CONFIG ("+base+".json):")

	seeded, err := configstore.Decode(mustRead(t, base+".json"), format.JSON)
	require.NoError(t, err)
	assert.Equal(t, configstore.Example(), seeded)

	// The operator fills in the file but leaves the refresh token empty
	writeCredentialFile(t, base+".json",
		`{"company_id":"42","access_token":"a","refresh_token":"","token_type":"bearer"}`)

	cfg, err := a.LoadCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.CompanyID)

	_, err = a.Connect(context.Background())
	require.ErrorIs(t, err, ErrMissingRefreshToken)
	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.Zero(t, f.requests.Load())
	assert.Zero(t, f.refresh.Load())
}

func TestMalformedConfig(t *testing.T) {
	f := newFakeIntuit(t)
	base := filepath.Join(t.TempDir(), "cfg")
	writeCredentialFile(t, base+".json", `{"company_id":`)
	a := f.newApp(t, base, &bytes.Buffer{})

	_, err := a.Connect(context.Background())

	var malformed *configstore.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.NotEmpty(t, Guidance(err))
	assert.Equal(t, `{"company_id":`, string(mustRead(t, base+".json")), "malformed file is left alone")
}

func TestCompanyInfo(t *testing.T) {
	f := newFakeIntuit(t)
	base := filepath.Join(t.TempDir(), "cfg")
	writeCredentialFile(t, base+".json",
		`{"company_id":"42","access_token":"fresh","refresh_token":"r","token_type":"bearer"}`)

	var stdout bytes.Buffer
	a := f.newApp(t, base, &stdout)

	require.NoError(t, a.CompanyInfo(context.Background(), Destination{Format: format.JSON, Pretty: true}))
	assert.Contains(t, stdout.String(), "\"CompanyName\": \"Acme\"")
}

func TestWriteExample(t *testing.T) {
	var stdout bytes.Buffer
	a := newFakeIntuit(t).newApp(t, filepath.Join(t.TempDir(), "cfg"), &stdout)

	require.NoError(t, a.WriteExample(Destination{Format: format.TOML}))
	assert.Contains(t, stdout.String(), "company_id = '0000000000000000000'")
}

func TestSetClientSecretReadOnlyStorage(t *testing.T) {
	a := newFakeIntuit(t).newApp(t, filepath.Join(t.TempDir(), "cfg"), &bytes.Buffer{})

	err := a.SetClientSecret(context.Background(), "new")
	assert.ErrorContains(t, err, "read-only")
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
