// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/govhub/events"
	"github.com/decred/govhub/govhub"
	"github.com/decred/govhub/mail"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/store"
	"github.com/decred/govhub/store/localdb"
	"github.com/decred/govhub/store/mysql"
	"github.com/decred/govhub/util"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

var (
	// cfg is the global config object that all commands have access to.
	cfg *config

	// hub is the govhub context that the commands are executed against.
	hub *govhub.Govhub
)

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		// If this is a pkg/errors error then we can pull the stack
		// trace out of the error and print it.
		stack, ok := util.StackTrace(err)
		if ok {
			fmt.Fprintf(os.Stderr, "%v\n", stack)
		}

		os.Exit(1)
	}
}

func _main() error {
	// Load the config. This also sets the log levels.
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return errors.Errorf("load config: %v", err)
	}

	// Setup the log rotation
	err = initLogRotator(filepath.Join(cfg.LogDir, logFilename))
	if err != nil {
		return err
	}
	defer closeLogRotator()

	log.Tracef("App dir: %v", cfg.AppDir)

	// Setup the store
	kv, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	// Setup the notifiers. Notification events are logged and, when a
	// mail domain is configured, emailed to the subscribers.
	m, err := mail.New(cfg.MailHost, cfg.MailUser, cfg.MailPass,
		cfg.MailAddress, cfg.MailCert, cfg.MailSkipVerify, cfg.MailLimit, kv)
	if err != nil {
		return err
	}
	em := events.NewManager()
	listener := make(chan interface{}, 16)
	for _, t := range notify.Types {
		em.Register(string(t), listener)
	}
	go logNotifications(listener)

	notifier := notify.Multi{notify.NewEventNotifier(em)}
	if cfg.MailDomain != "" {
		notifier = append(notifier, notify.NewMailNotifier(m, cfg.MailDomain))
	}

	hub = govhub.New(kv, &env{
		caller: cfg.Account,
		self:   cfg.SelfAccount,
		height: cfg.BlockHeight,
	}, notifier, cfg.Encrypt)

	// Parse the CLI args and execute the command. The help message
	// flags and unknown flag errors are caught during this parse.
	parser := flags.NewParser(&cmds{DoNotUse: cfg}, flags.Default)
	_, err = parser.Parse()
	if err != nil {
		// go-flags has already printed the error. Exit with an error
		// code.
		kv.Close()
		closeLogRotator()
		os.Exit(1)
	}

	return nil
}

// newStore returns the store selected by the config.
func newStore(cfg *config) (store.BlobKV, error) {
	switch cfg.DB {
	case dbTypeMySQL:
		return mysql.New(cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName)
	default:
		return localdb.New(cfg.AppDir, cfg.DataDir)
	}
}

// logNotifications logs the notifications emitted by the commands.
func logNotifications(c chan interface{}) {
	for v := range c {
		n, ok := v.(notify.Notification)
		if !ok {
			continue
		}
		log.Debugf("Notification %v: %v %v %v -> %v", n.ID, n.Type,
			n.EntityKind, n.EntityID, n.Subscribers)
	}
}
