package agencia

import (
	"context"
	"net/http"
	"testing"

	"github.com/eshaffer321/agencia-go/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!doctype html><html><body><div id="navbar"></div><main></main></body></html>`

const testFragment = `<nav>
  <a class="nav-link" data-route="index" href="/index.html">Início</a>
  <a class="nav-link" data-route="pacotes" href="/pacotes.html">Pacotes</a>
  <a class="nav-link" data-route="vendedores" data-role="ADMIN" href="/vendedores.html">Vendedores</a>
  <span data-role="">Everyone</span>
  <span id="userInfo"></span>
  <button id="btnLogout">Sair</button>
</nav>`

// navbarBackend serves the fragment, a session for user and a logout endpoint
func navbarBackend(t *testing.T, user string, logoutStatus int, logouts *int) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(NavbarPartialPath, respond(http.StatusOK, "text/html", testFragment))
	mux.HandleFunc(SessionPath, func(w http.ResponseWriter, r *http.Request) {
		if user == "" {
			respond(http.StatusUnauthorized, "", "")(w, r)
			return
		}
		respond(http.StatusOK, "application/json", user)(w, r)
	})
	mux.HandleFunc(LogoutPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		*logouts++
		w.WriteHeader(logoutStatus)
	})
	return mux
}

func parsePage(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(testPage)
	require.NoError(t, err)
	return doc
}

func query(t *testing.T, doc *dom.Document, selector string) *dom.Element {
	t.Helper()
	el, err := doc.QuerySelector(selector)
	require.NoError(t, err)
	require.NotNil(t, el, selector)
	return el
}

func TestRouteToken(t *testing.T) {
	tests := map[string]string{
		"/":                  "index",
		"":                   "index",
		"/index.html":        "index",
		"/pacotes.html":      "pacotes",
		"/admin/vendedores":  "vendedores",
		"/app/":              "index",
		"/relatorio.v2.html": "relatorio.v2",
	}
	for p, expected := range tests {
		assert.Equal(t, expected, RouteToken(p), p)
	}
}

func TestClient_LoadNavbar_HidesRoleGatedElements(t *testing.T) {
	var logouts int
	c, _ := newTestClient(t, navbarBackend(t, "", http.StatusNoContent, &logouts), "/pacotes.html", nil)
	doc := parsePage(t)

	err := c.LoadNavbar(context.Background(), doc, &User{Nome: "Ana", Role: "USER"})
	require.NoError(t, err)

	assert.True(t, query(t, doc, `[data-role="ADMIN"]`).HasClass(hiddenClass))
	assert.False(t, query(t, doc, `span[data-role=""]`).HasClass(hiddenClass))
	assert.Equal(t, "Ana", query(t, doc, "#userInfo").Text())

	assert.True(t, query(t, doc, `a[data-route="pacotes"]`).HasClass(activeClass))
	assert.False(t, query(t, doc, `a[data-route="index"]`).HasClass(activeClass))
}

func TestClient_LoadNavbar_AdminSeesEverything(t *testing.T) {
	var logouts int
	c, _ := newTestClient(t, navbarBackend(t, "", http.StatusNoContent, &logouts), "/", nil)
	doc := parsePage(t)

	require.NoError(t, c.LoadNavbar(context.Background(), doc, &User{Nome: "Admin", Role: "ADMIN"}))

	assert.False(t, query(t, doc, `[data-role="ADMIN"]`).HasClass(hiddenClass))
	assert.True(t, query(t, doc, `a[data-route="index"]`).HasClass(activeClass))
}

func TestClient_LoadNavbar_FetchesUserWhenMissing(t *testing.T) {
	var logouts int
	backend := navbarBackend(t, `{"nome":"Bia","role":"USER"}`, http.StatusNoContent, &logouts)
	c, _ := newTestClient(t, backend, "/vendedores.html", nil)
	doc := parsePage(t)

	require.NoError(t, c.LoadNavbar(context.Background(), doc, nil))

	assert.Equal(t, "Bia", query(t, doc, "#userInfo").Text())
	assert.True(t, query(t, doc, `[data-role="ADMIN"]`).HasClass(hiddenClass))
	assert.True(t, query(t, doc, `a[data-route="vendedores"]`).HasClass(activeClass))
}

func TestClient_LoadNavbar_NoUserSkipsRolePass(t *testing.T) {
	var logouts int
	c, _ := newTestClient(t, navbarBackend(t, "", http.StatusNoContent, &logouts), "/pacotes.html", nil)
	doc := parsePage(t)

	require.NoError(t, c.LoadNavbar(context.Background(), doc, nil))

	assert.False(t, query(t, doc, `[data-role="ADMIN"]`).HasClass(hiddenClass))
	assert.Empty(t, query(t, doc, "#userInfo").Text())
}

func TestClient_LoadNavbar_WithoutContainer(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler(), "/", nil)
	doc, err := dom.Parse(`<html><body><p>no navbar</p></body></html>`)
	require.NoError(t, err)

	require.NoError(t, c.LoadNavbar(context.Background(), doc, &User{Nome: "Ana"}))

	out, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, out, "nav-link")
}

func TestClient_LoadNavbar_Logout(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		var logouts int
		notifier := new(MockNotifier)
		notifier.On("Confirm", LogoutConfirmMessage).Return(true).Once()
		c, nav := newTestClient(t, navbarBackend(t, "", http.StatusNoContent, &logouts), "/pacotes.html", notifier)
		doc := parsePage(t)
		require.NoError(t, c.LoadNavbar(context.Background(), doc, &User{Nome: "Ana", Role: "USER"}))

		require.NoError(t, query(t, doc, "#btnLogout").Click(context.Background()))

		assert.Equal(t, 1, logouts)
		assert.Equal(t, []string{LoginPath}, nav.History())
		notifier.AssertExpectations(t)
	})

	t.Run("declined", func(t *testing.T) {
		var logouts int
		notifier := new(MockNotifier)
		notifier.On("Confirm", LogoutConfirmMessage).Return(false).Once()
		c, nav := newTestClient(t, navbarBackend(t, "", http.StatusNoContent, &logouts), "/pacotes.html", notifier)
		doc := parsePage(t)
		require.NoError(t, c.LoadNavbar(context.Background(), doc, &User{Nome: "Ana", Role: "USER"}))

		require.NoError(t, query(t, doc, "#btnLogout").Click(context.Background()))

		assert.Equal(t, 0, logouts)
		assert.Empty(t, nav.History())
	})

	t.Run("sign-out failure still redirects", func(t *testing.T) {
		var logouts int
		notifier := new(MockNotifier)
		notifier.On("Confirm", LogoutConfirmMessage).Return(true).Once()
		c, nav := newTestClient(t, navbarBackend(t, "", http.StatusInternalServerError, &logouts), "/pacotes.html", notifier)
		doc := parsePage(t)
		require.NoError(t, c.LoadNavbar(context.Background(), doc, &User{Nome: "Ana", Role: "USER"}))

		err := query(t, doc, "#btnLogout").Click(context.Background())

		assert.ErrorIs(t, err, ErrHTTP)
		assert.Equal(t, 1, logouts)
		assert.Equal(t, []string{LoginPath}, nav.History())
	})
}

func TestClient_BootPage(t *testing.T) {
	t.Run("with session", func(t *testing.T) {
		srv := newStubBackend(t)
		nav := NewMemoryNavigator(LoginPath)
		c, err := NewClient(&ClientOptions{BaseURL: srv.URL, Navigator: nav})
		require.NoError(t, err)
		defer c.Close()

		_, err = c.Login(context.Background(), "ana@agencia.dev", "ana123")
		require.NoError(t, err)
		nav.Navigate("/pacotes.html")

		doc := parsePage(t)
		user, err := c.BootPage(context.Background(), doc)

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ana", user.Nome)
		assert.Equal(t, "/pacotes.html", nav.Path())
		assert.Equal(t, "Ana", query(t, doc, "#userInfo").Text())
		assert.True(t, query(t, doc, `[data-role="ADMIN"]`).HasClass(hiddenClass))
		assert.True(t, query(t, doc, `a[data-route="pacotes"]`).HasClass(activeClass))
	})

	t.Run("without session", func(t *testing.T) {
		srv := newStubBackend(t)
		nav := NewMemoryNavigator("/pacotes.html")
		c, err := NewClient(&ClientOptions{BaseURL: srv.URL, Navigator: nav})
		require.NoError(t, err)
		defer c.Close()

		doc := parsePage(t)
		user, err := c.BootPage(context.Background(), doc)

		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, []string{LoginPath}, nav.History())
		assert.Empty(t, query(t, doc, "#userInfo").Text())
	})
}
