package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshaffer321/agencia-go/internal/stubserver"
)

type harness struct {
	t           *testing.T
	baseURL     string
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("AGENCIA_EMAIL", "")
	t.Setenv("AGENCIA_PASSWORD", "")

	stub, err := stubserver.New(stubserver.Options{Logger: zerolog.Nop(), BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)

	return &harness{t: t, baseURL: srv.URL, sessionFile: filepath.Join(t.TempDir(), "session.json")}
}

// run executes one command line with its own root command, like a new process
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	out, errOut, _, err := h.runApp(stdin, args...)
	return out, errOut, err
}

func (h *harness) runApp(stdin string, args ...string) (string, string, *app, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--base-url", h.baseURL, "--session-file", h.sessionFile}, args...)
	rootCmd, a := newRoot()
	err := run(a, rootCmd, args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), a, err
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd, a := newRoot()
	require.NoError(t, run(a, rootCmd, []string{"version"}, strings.NewReader(""), &out, &out))
	assert.Equal(t, "agencia version dev\n", out.String())
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("", "login", "--email", "ana@agencia.dev", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, errOut, "invalid email or password")
	assert.NoFileExists(t, h.sessionFile)

	_, _, err = h.run("", "login")
	assert.ErrorContains(t, err, "email is required")

	out, _, err := h.run("ana123\n", "login", "--email", "ana@agencia.dev")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Ana (USER)\n", out)
	assert.FileExists(t, h.sessionFile)

	out, _, err = h.run("", "me")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ana@agencia.dev"`)
	assert.Contains(t, out, `"role": "USER"`)
}

func TestRequests(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("", "get", "/api/pacotes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401 Unauthorized on /api/pacotes")
	assert.Contains(t, errOut, "Session expired")

	_, _, err = h.run("", "login", "--email", "ana@agencia.dev", "--password", "ana123")
	require.NoError(t, err)

	out, _, err := h.run("", "post", "/api/pacotes", `{"titulo":"Praia","destino":"Maceió","preco":2100}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"titulo": "Praia"`)

	out, _, err = h.run("", "put", "/api/pacotes/1", `{"titulo":"Praia do Francês","preco":2300}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Praia do Francês")

	image := filepath.Join(t.TempDir(), "praia.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))
	out, _, err = h.run("", "upload", "/api/pacotes/1/imagem", image)
	require.NoError(t, err)
	assert.Contains(t, out, `"/uploads/1-praia.jpg"`)

	out, _, err = h.run("", "get", "/api/pacotes")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": 1`)

	_, errOut, err = h.run("", "get", "/api/vendedores", "--redirect-403")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 Forbidden on /api/vendedores")
	assert.Contains(t, errOut, "! Access denied")
	assert.Contains(t, errOut, "Redirected to /index.html")

	out, _, err = h.run("", "delete", "/api/pacotes/1")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNavbar(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "navbar", "--page", "/pacotes.html")
	assert.ErrorContains(t, err, "not signed in")

	_, _, err = h.run("", "login", "--email", "ana@agencia.dev", "--password", "ana123")
	require.NoError(t, err)

	out, _, err := h.run("", "navbar", "--page", "/pacotes.html")
	require.NoError(t, err)
	assert.Contains(t, out, `class="nav-link active" data-route="pacotes"`)
	assert.Contains(t, out, `class="nav-item d-none" data-role="ADMIN"`)
	assert.Contains(t, out, `id="userInfo">Ana</span>`)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "login", "--email", "admin@agencia.dev", "--password", "admin123")
	require.NoError(t, err)

	out, _, err := h.run("", "get", "/api/vendedores")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@agencia.dev")

	out, _, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", out)
	assert.NoFileExists(t, h.sessionFile)

	_, _, err = h.run("", "me")
	assert.ErrorContains(t, err, "not signed in")
}

func TestClientClosedAfterFailure(t *testing.T) {
	h := newHarness(t)

	_, _, a, err := h.runApp("", "get", "/api/pacotes")
	require.Error(t, err)
	assert.True(t, a.closed)
	assert.Nil(t, a.client)

	_, _, err = h.run("", "login", "--email", "ana@agencia.dev", "--password", "ana123")
	require.NoError(t, err)

	_, _, a, err = h.runApp("", "get", "/api/pacotes/999")
	assert.ErrorContains(t, err, "404 on /api/pacotes/999")
	assert.True(t, a.closed)

	_, _, a, err = h.runApp("", "me")
	require.NoError(t, err)
	assert.True(t, a.closed)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdir: restoring %s: %v", prev, err)
		}
	})
}
