// Copyright (c) 2017-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/decred/govhub/access"
	"github.com/decred/govhub/events"
	"github.com/decred/govhub/govhub"
	"github.com/decred/govhub/mail"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/store/localdb"
	"github.com/decred/govhub/store/mysql"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// logWriter writes log lines to stdout without their timestamp and level
// prefix and, once initialized, in full to the log rotator.
type logWriter struct{}

// logPrefix matches "2022-07-22 11:23:19.766 [INF] CTL: ".
var logPrefix = regexp.MustCompile(`^[^\[]+[^:]+: `)

func (logWriter) Write(p []byte) (int, error) {
	line := p
	if loc := logPrefix.FindIndex(p); loc != nil {
		line = p[loc[1]:]
	}
	os.Stdout.Write(line)
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// Loggers per subsystem. A single backend logger is created and all subsytem
// loggers created from it will write to the backend.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	log      = backendLog.Logger("CTL")
	ghubLog  = backendLog.Logger("GHUB")
	accsLog  = backendLog.Logger("ACCS")
	storLog  = backendLog.Logger("STOR")
	ntfyLog  = backendLog.Logger("NTFY")
	mailLog  = backendLog.Logger("MAIL")
	eventLog = backendLog.Logger("EVNT")
)

// Initialize package-global logger variables.
func init() {
	govhub.UseLogger(ghubLog)
	access.UseLogger(accsLog)
	localdb.UseLogger(storLog)
	mysql.UseLogger(storLog)
	notify.UseLogger(ntfyLog)
	mail.UseLogger(mailLog)
	events.UseLogger(eventLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"CTL":  log,
	"GHUB": ghubLog,
	"ACCS": accsLog,
	"STOR": storLog,
	"NTFY": ntfyLog,
	"MAIL": mailLog,
	"EVNT": eventLog,
}

// initLogRotator opens the rotated log file. Rolled files are kept next to
// it.
func initLogRotator(logFile string) error {
	dir := filepath.Dir(logFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "create log dir %v", dir)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return errors.Wrap(err, "create log rotator")
	}
	logRotator = r
	return nil
}

func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}

// supportedSubsystems returns the sorted subsystem ids.
func supportedSubsystems() []string {
	ids := make([]string, 0, len(subsystemLoggers))
	for id := range subsystemLoggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// setLogLevel sets the level of a subsystem. Unknown subsystems are ignored
// and unknown levels select info.
func setLogLevel(id, level string) {
	if l, ok := subsystemLoggers[id]; ok {
		lvl, _ := slog.LevelFromString(level)
		l.SetLevel(lvl)
	}
}

func setLogLevels(level string) {
	for id := range subsystemLoggers {
		setLogLevel(id, level)
	}
}
