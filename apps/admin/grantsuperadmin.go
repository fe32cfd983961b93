package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/services/identity"
)

// grantSuperAdmin attaches platform superadmin claims to an existing
// identity account. This is the bootstrap path: the first superadmin
// cannot be created through the API since every console endpoint already
// requires one.
func (cli *commandLine) grantSuperAdmin(uid string) error {
	if uid == "" {
		uid = core.Conf.SuperAdminUID
	}
	if uid == "" {
		return errors.New("no -uid provided and superAdminUID is not configured")
	}

	ctx := context.Background()
	acct, err := cli.identity.GetAccount(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "getting identity account")
	}
	if err = cli.identity.SetClaims(ctx, uid, identitysvc.Claims{SuperAdmin: true}); err != nil {
		return errors.Wrap(err, "setting superadmin claims")
	}

	fmt.Printf("%s (%s) is now a superadmin\n", acct.Email, acct.UID)
	return nil
}
