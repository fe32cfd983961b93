package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/gradebook"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
	"github.com/shulehub/shule/fs"
	"github.com/shulehub/shule/services/email"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/services/objectstore"
	"github.com/shulehub/shule/storage/database"
	"github.com/shulehub/shule/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var lg core.Logger
	if core.Conf.RollbarToken != "" && !core.Conf.Debug {
		lg = logsvc.NewRollbarLogger(std, core.Conf)
	} else {
		lg = logsvc.NewStdLogger(std)
	}

	core.TemplatesFS = appfs.FS

	// validation
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)

	// set up DB
	sqlDB, err := database.Open(core.Conf)
	errAndDie(std, err)
	defer func() { _ = sqlDB.Close() }()
	db := sqlx.NewDb(sqlDB, core.Conf.Database.Engine)

	orgRepo := sqlxrepos.NewOrgRepository(db)
	personRepo := sqlxrepos.NewPersonRepository(db)
	refDataRepo := sqlxrepos.NewRefDataRepository(db)
	loadRepo := sqlxrepos.NewLoadRepository(db)
	gradebookRepo := sqlxrepos.NewGradebookRepository(db)

	// set up external services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService(core.Conf, lg)
	} else {
		mailSvc = emailsvc.NewSendgridService(core.Conf, lg)
	}

	var idSvc identitysvc.Service
	if core.Conf.Identity.BaseURL != "" {
		idSvc = identitysvc.NewRestService(core.Conf)
	} else {
		idSvc = identitysvc.NewDummyService()
	}

	var store storesvc.Service
	if core.Conf.ObjectStore.Endpoint != "" {
		store, err = storesvc.NewOSSService(core.Conf)
		errAndDie(std, err)
	} else {
		store = storesvc.NewDummyService()
	}

	// set up domain services
	orgSvc := org.NewService(orgRepo, idSvc, store, lg)
	personSvc := person.NewService(personRepo, orgRepo, idSvc, store, mailSvc, lg)
	refDataSvc := refdata.NewService(refDataRepo)
	loadSvc := load.NewService(loadRepo, personRepo, refDataRepo)
	gradebookSvc := gradebook.NewService(gradebookRepo, loadRepo, personRepo)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:      core.Conf.Server.Addr,
			Logger:       lg,
			Validate:     validate,
			Translator:   translator,
			OrgSvc:       orgSvc,
			PersonSvc:    personSvc,
			RefDataSvc:   refDataSvc,
			LoadSvc:      loadSvc,
			GradebookSvc: gradebookSvc,
		},
	)
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
