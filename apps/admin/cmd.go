package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/shulehub/shule/services/identity"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	identity identitysvc.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the database and app user if they do not exist")
	fmt.Println("  migrate up|down|redo|status|version [ARGS] - run database migrations")
	fmt.Println("  createaccount -email EMAIL [-name NAME] - create an identity account; the password is prompted")
	fmt.Println("  grantsuperadmin [-uid UID] - grant platform superadmin claims to an identity account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAcctCmd := flag.NewFlagSet("createaccount", flag.ExitOnError)
	createAcctEmail := createAcctCmd.String("email", "", "The account's email. The password will be prompted next.")
	createAcctName := createAcctCmd.String("name", "", "The account's display name.")

	grantCmd := flag.NewFlagSet("grantsuperadmin", flag.ExitOnError)
	grantUID := grantCmd.String("uid", "", "The identity account UID. Defaults to the configured superAdminUID.")

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createaccount":
		if err := createAcctCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAcctEmail == "" {
			createAcctCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAcctCmd.Usage()
			return errHelp
		}
		return cli.createAccount(*createAcctEmail, *createAcctName, string(pwd))
	case "grantsuperadmin":
		if err := grantCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.grantSuperAdmin(*grantUID)
	default:
		cli.printUsage()
		return errHelp
	}
}
