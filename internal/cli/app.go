// Package cli is the storefront command line front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/api"
	"github.com/dtroode/storefront/internal/cart"
	"github.com/dtroode/storefront/internal/logger"
	"github.com/dtroode/storefront/internal/service"
	"github.com/dtroode/storefront/internal/session"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// DashboardReader returns the backend summary document.
type DashboardReader interface {
	Get(ctx context.Context) (map[string]any, error)
}

// App holds everything the commands operate on.
type App struct {
	Session   *session.Store
	Cart      *cart.Store
	Catalog   *service.Catalog
	Checkout  *service.Checkout
	Orders    *service.Orders
	Profile   *service.Profile
	Account   *service.Account
	Dashboard DashboardReader
	Logger    *logger.Logger
	Build     BuildInfo
}

// skipBootstrap marks commands that do not need the session restored.
const skipBootstrap = "skip-bootstrap"

// NewRootCmd builds the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the catalog, manage a cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipBootstrap] != "" {
				return nil
			}
			app.Session.Bootstrap(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		newProductsCmd(app),
		newCartCmd(app),
		newCheckoutCmd(app),
		newOrdersCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newSessionCmd(app),
		newRegisterCmd(app),
		newLinkClientCmd(app),
		newProfileCmd(app),
		newDashboardCmd(app),
		newVersionCmd(app),
	)

	return root
}

// Run executes the command line and returns the process exit code. Failures
// are reported on stderr as a single user facing message.
func Run(ctx context.Context, app *App, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		app.Logger.Debug("command failed", "error", err.Error())
		fmt.Fprintln(stderr, "Error:", Message(err))
		return 1
	}
	return 0
}

// Message renders err for the user.
func Message(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return strings.TrimPrefix(verr.Error(), "invalid input: ")
	}

	switch {
	case errors.Is(err, service.ErrLoginRequired):
		return "you need to log in first (storefront login <username>)"
	case errors.Is(err, service.ErrClientNotLinked):
		return "your account has no client profile; link one with storefront link-client"
	case errors.Is(err, service.ErrEmptyCart):
		return "your cart is empty"
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Message(err, fmt.Sprintf("the server rejected the request (%d)", apiErr.Status))
	}

	return api.Message(err, err.Error())
}
