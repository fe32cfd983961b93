package main

import (
	"context"
	"testing"

	"github.com/shulehub/shule/services/identity"
)

func setup() (*commandLine, *identitysvc.DummyService) {
	idSvc := identitysvc.NewDummyService()
	return &commandLine{identity: idSvc}, idSvc
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // fed to the password prompt
	wantErr error
}

func Test_commandLine_createAccount(t *testing.T) {
	cli, idSvc := setup()

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no email", args: []string{"createaccount"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"createaccount", "-email", "root@shule.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"createaccount", "-email", "root@shule.cd", "-name", "Root"}, pwd: "s3cr3tpwd"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// the account landed in the identity provider
	if _, err := idSvc.CreateAccount(context.Background(), identitysvc.NewAccount{Email: "root@shule.cd"}); err != identitysvc.ErrEmailExists {
		t.Errorf("CreateAccount() error = %v, want ErrEmailExists", err)
	}
}

func Test_commandLine_grantSuperAdmin(t *testing.T) {
	cli, idSvc := setup()

	acct, err := idSvc.CreateAccount(context.Background(), identitysvc.NewAccount{
		Email:    "root@shule.cd",
		Password: "s3cr3tpwd",
	})
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}

	if err := cli.run([]string{"admin", "grantsuperadmin", "-uid", acct.UID}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	claims, ok := idSvc.GetClaims(acct.UID)
	if !ok || !claims.SuperAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// neither -uid nor a configured superAdminUID
	if err := cli.run([]string{"admin", "grantsuperadmin"}); err == nil {
		t.Error("cli.run() succeeded; want error")
	}
}
