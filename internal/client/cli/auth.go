package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
)

// getSimpleText, getMultiline and getCommaSeparated are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText     = GetSimpleText
	getMultiline      = GetMultiline
	getCommaSeparated = GetCommaSeparated
)

// Login prompts for an ID token issued by the identity provider, verifies
// its signature and signs the user in.
//
// Evidence is only ever uploaded under the verified user id, so a forged or
// expired token never reaches the remote stores.
func (a *App) Login(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Paste your ID token", os.Stdout)
	if err != nil {
		return err
	}

	user, err := identity.ParseIDToken(token, []byte(a.config.IdentitySecret))
	if err != nil {
		printlnFn("Sign-in failed:", err.Error())
		return err
	}

	a.session.SignIn(user)
	printlnFn(fmt.Sprintf("Signed in as %s", user.Email))
	return nil
}

// Logout clears the in-memory session. Queued captures stay in the local
// queue and drain on the next signed-in session.
func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut()
	printlnFn("Signed out")
	return nil
}
