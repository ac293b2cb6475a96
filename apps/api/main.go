package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/nelc/eoxnelp/apps/api/echo"
	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/progress"
	"github.com/nelc/eoxnelp/core/registration"
	"github.com/nelc/eoxnelp/core/user"
	certsvc "github.com/nelc/eoxnelp/services/certificates"
	edxappsvc "github.com/nelc/eoxnelp/services/edxapp"
	"github.com/nelc/eoxnelp/services/futurex"
	logsvc "github.com/nelc/eoxnelp/services/logger"
	"github.com/nelc/eoxnelp/storage/database"
	sqlxrepos "github.com/nelc/eoxnelp/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	ctx := context.Background()

	// set up DB
	db, err := setUpDB(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up the host platform
	platform, closePlatform, err := edxappsvc.NewPlatform(ctx, conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up edxapp platform: %v", err), err)
	}
	defer func() {
		if err = closePlatform(); err != nil {
			logger.Error(fmt.Sprintf("closing edxapp platform: %v", err), err)
		}
	}()

	// set up services
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))

	conv := program.NewConverter(logger, program.UmmAlQura{})
	records, err := program.NewRecordValidator()
	if err != nil {
		logger.Fatal(fmt.Sprintf("compiling lookup record schema: %v", err), err)
	}
	programSvc := program.NewService(platform, conv, records, logger)

	var certificates *certificate.Receiver
	if conf.Certificates.BaseURL != "" {
		certificates = certificate.NewReceiver(
			certificate.NewGenerator(usrSvc, platform.Grades, conf.Certificates.GroupCodes),
			certsvc.NewClient(conf.Certificates, logger),
			logger,
		)
	}

	var dispatcher *progress.Dispatcher
	if conf.Futurex.Enabled {
		dispatcher = progress.NewDispatcher(
			progress.NewGenerator(usrSvc, platform, conv, logger),
			usrSvc,
			platform.Grades,
			futurex.NewClient(conf.Futurex, logger),
			logger,
			conf.Futurex.Workers,
		)
		defer dispatcher.Close()
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("edxapp").Set(conf.Edxapp.Backend + "/" + conf.Edxapp.ContentStore)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			ProgramSvc:   programSvc,
			Registry:     registration.NewRegistry(conf.Registration),
			Validate:     validate,
			Translator:   translator,
			Certificates: certificates,
			Progress:     dispatcher,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.OpenX(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
