// Package logsvc is the application logger: stdlib output mirrored to Rollbar.
package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/user"
)

type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Version + "+" + conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close waits for queued Rollbar items to be sent.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

// prepare splits the person out of args.
// expected fmt: msg | error, map[string]interface{}, user.User
func prepare(msg string, args []interface{}) (newArgs []interface{}, person *user.User) {
	newArgs = make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		var usr *user.User
		switch v := arg.(type) {
		case user.User:
			usr = &v
		case *user.User:
			usr = v
		default:
			newArgs = append(newArgs, arg)
			continue
		}
		if person == nil && usr != nil && usr.ID != 0 { // only set one User
			person = usr
		}
	}
	return newArgs, person
}

func (l *RollbarLogger) send(level string, msg string, args []interface{}) {
	newArgs, person := prepare(msg, args)
	if person != nil {
		rollbar.SetPerson(person.StringID(), person.Username, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, newArgs...)
	l.print(level, msg, args)
}

func (l *RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s\n", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.send(rollbar.DEBUG, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.send(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.send(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.send(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.send(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
