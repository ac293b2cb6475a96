package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/saml"
	edxappsvc "github.com/nelc/eoxnelp/services/edxapp"
	logsvc "github.com/nelc/eoxnelp/services/logger"
	"github.com/nelc/eoxnelp/storage/database"
	sqlxrepos "github.com/nelc/eoxnelp/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.OpenX(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	platform, closePlatform, err := edxappsvc.NewPlatform(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal("setting up edxapp platform", err)
	}

	records, err := program.NewRecordValidator()
	if err != nil {
		logger.Fatal("compiling lookup record schema", err)
	}
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	samlRepo := sqlxrepos.NewSAMLRepository(db)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		samlRepo:   samlRepo,
		samlSvc:    saml.NewService(samlRepo, logger),
		programSvc: program.NewService(platform, program.NewConverter(logger, program.UmmAlQura{}), records, logger),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	err = cli.run(os.Args)

	_ = closePlatform()
	_ = db.Close()
	logger.Close()

	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
