package agencia

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/eshaffer321/agencia-go/internal/transport"
	"github.com/eshaffer321/agencia-go/pkg/dom"
)

const (
	navbarContainerID = "navbar"
	userInfoID        = "userInfo"
	logoutButtonID    = "btnLogout"

	activeClass = "active"
	hiddenClass = "d-none"

	// LogoutConfirmMessage is asked before signing out
	LogoutConfirmMessage = "Do you really want to sign out?"
)

// RouteToken derives the navbar route of a location path: the file name
// without extension, "index" for the root.
func RouteToken(p string) string {
	file := p[strings.LastIndex(p, "/")+1:]
	if file == "" {
		file = "index.html"
	}
	return strings.TrimSuffix(file, path.Ext(file))
}

// LoadNavbar injects the shared navbar fragment into the #navbar element
// of doc. It marks the link of the current route active, shows the user's
// name, hides elements whose data-role differs from the user's role and
// wires the logout button. User is fetched when nil. Documents without a
// #navbar element are left untouched.
func (c *Client) LoadNavbar(ctx context.Context, doc *dom.Document, user *User) error {
	host := doc.GetElementByID(navbarContainerID)
	if host == nil {
		return nil
	}

	resp, err := c.transport.Do(ctx, &transport.Request{Method: http.MethodGet, URL: NavbarPartialPath})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Navbar fragment request failed", "status", resp.StatusCode)
	}
	if err := host.SetInnerHTML(string(resp.Body)); err != nil {
		return err
	}

	route := RouteToken(c.navigator.Path())
	links, err := host.QuerySelectorAll("a.nav-link[data-route]")
	if err != nil {
		return err
	}
	for _, link := range links {
		if r, _ := link.Attr("data-route"); r == route {
			link.AddClass(activeClass)
			break
		}
	}

	if user == nil {
		if user, err = c.GetUserSession(ctx); err != nil {
			return err
		}
	}

	if info := host.GetElementByID(userInfoID); user != nil && info != nil {
		info.SetText(user.Nome)
	}

	if user != nil && user.Role != "" {
		gated, err := host.QuerySelectorAll("[data-role]")
		if err != nil {
			return err
		}
		for _, el := range gated {
			if need, _ := el.Attr("data-role"); need != "" && need != user.Role {
				el.AddClass(hiddenClass)
			}
		}
	}

	if btn := host.GetElementByID(logoutButtonID); btn != nil {
		btn.AddEventListener("click", func(ctx context.Context) error {
			if !c.notifier.Confirm(LogoutConfirmMessage) {
				return nil
			}
			return c.Logout(ctx)
		})
	}

	return nil
}

// BootPage guards a protected page and renders its navbar. It returns the
// visitor, nil when the visitor was sent to the login page.
func (c *Client) BootPage(ctx context.Context, doc *dom.Document) (*User, error) {
	user, err := c.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.LoadNavbar(ctx, doc, user); err != nil {
		return user, err
	}
	return user, nil
}
