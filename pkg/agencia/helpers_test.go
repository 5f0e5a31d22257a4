package agencia

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eshaffer321/agencia-go/internal/stubserver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Alert(msg string) {
	m.Called(msg)
}

func (m *MockNotifier) Confirm(msg string) bool {
	args := m.Called(msg)
	return args.Bool(0)
}

// respond returns a handler answering with a fixed status, content type and body
func respond(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// newTestClient starts srv and returns a client positioned at page
func newTestClient(t *testing.T, handler http.Handler, page string, notifier Notifier) (*Client, *MemoryNavigator) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	nav := NewMemoryNavigator(page)
	if notifier == nil {
		notifier = new(MockNotifier)
	}
	c, err := NewClient(&ClientOptions{
		BaseURL:   srv.URL,
		Navigator: nav,
		Notifier:  notifier,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, nav
}

// newStubBackend starts the in-memory backend with the default accounts
func newStubBackend(t *testing.T) *httptest.Server {
	t.Helper()
	stub, err := stubserver.New(stubserver.Options{Logger: zerolog.Nop(), BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return srv
}
