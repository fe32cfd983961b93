package main

import (
	"log"
	"os"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB; commands that need it ping it themselves
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()

	var idSvc identitysvc.Service
	if core.Conf.Identity.BaseURL != "" {
		idSvc = identitysvc.NewRestService(core.Conf)
	} else {
		idSvc = identitysvc.NewDummyService()
	}

	// start CLI
	cli := commandLine{
		db:       db,
		identity: idSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
