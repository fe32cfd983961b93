package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/services/identity"
)

// createAccount creates a bare identity account. Pair with
// grantsuperadmin to bootstrap the first platform operator; tenant
// accounts are normally provisioned through the API instead.
func (cli *commandLine) createAccount(email, name, pwd string) error {
	acct, err := cli.identity.CreateAccount(context.Background(), identitysvc.NewAccount{
		Email:       core.CleanString(email, true /* lower */),
		Password:    pwd,
		DisplayName: core.CleanString(name),
	})
	if err != nil {
		return errors.Wrap(err, "creating identity account")
	}

	fmt.Printf("account %s created with UID %s\n", acct.Email, acct.UID)
	return nil
}
