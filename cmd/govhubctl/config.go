// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrutil/v3"
	"github.com/decred/govhub/util"
	"github.com/decred/slog"
	"github.com/jessevdk/go-flags"
)

const (
	// General application settings
	appName     = "govhubctl"
	dataDirname = "data"
	logDirname  = "logs"
	logLevel    = "info"

	// Store settings
	dbTypeLevelDB = "leveldb"
	dbTypeMySQL   = "mysql"
	dbHost        = "localhost:3306"
	dbUser        = "govhub"
	dbName        = "govhub"

	// Environment settings
	selfAccount = "govhub.near"

	// Mail settings
	mailLimit = 100
)

var (
	// General application settings
	configFilename = fmt.Sprintf("%v.conf", appName)
	logFilename    = fmt.Sprintf("%v.log", appName)

	appDir     = dcrutil.AppDataDir(appName, false)
	dataDir    = filepath.Join(appDir, dataDirname)
	logDir     = filepath.Join(appDir, logDirname)
	configFile = filepath.Join(appDir, configFilename)
)

// config is the command configuration.
type config struct {
	AppDir     string `long:"appdir" description:"Application home directory path"`
	DataDir    string `long:"datadir" description:"Data directory path"`
	LogDir     string `long:"logdir" description:"Log directory path"`
	ConfigFile string `long:"configfile" description:"Config file path"`
	LogLevel   string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// Store settings
	DB      string `long:"db" description:"Store backend {leveldb, mysql}"`
	DBHost  string `long:"dbhost" description:"MySQL host"`
	DBUser  string `long:"dbuser" description:"MySQL user"`
	DBPass  string `long:"dbpass" description:"MySQL password, also used to derive the encryption key"`
	DBName  string `long:"dbname" description:"MySQL database name"`
	Encrypt bool   `long:"encrypt" description:"Encrypt stored blobs"`

	// Environment settings
	SelfAccount string `long:"selfaccount" description:"Privileged system account"`
	Account     string `long:"account" description:"Account that the commands are executed as"`
	BlockHeight uint64 `long:"blockheight" description:"Block height of the calls; 0 derives it from the clock"`

	// Mail settings
	MailHost       string `long:"mailhost" description:"SMTP host"`
	MailUser       string `long:"mailuser" description:"SMTP user"`
	MailPass       string `long:"mailpass" description:"SMTP password"`
	MailAddress    string `long:"mailaddress" description:"Sender email address"`
	MailCert       string `long:"mailcert" description:"SMTP server certificate path (for self signed certs)"`
	MailSkipVerify bool   `long:"mailskipverify" description:"Skip SMTP TLS verification"`
	MailDomain     string `long:"maildomain" description:"Email domain of the accounts; notification emails are disabled when empty"`
	MailLimit      int    `long:"maillimit" description:"Notification emails an account may receive per 24 hours"`

	// Output settings
	JSON bool `long:"json" description:"Print replies as raw JSON"`
}

// env is the govhub environment of the CLI. The caller and the system
// account come from the config.
type env struct {
	caller string
	self   string
	height uint64
}

// Caller satisfies the govhub Env interface.
func (e *env) Caller() string { return e.caller }

// Self satisfies the govhub Env interface.
func (e *env) Self() string { return e.self }

// Now satisfies the govhub Env interface.
func (e *env) Now() int64 { return time.Now().UnixNano() }

// BlockHeight satisfies the govhub Env interface.
func (e *env) BlockHeight() uint64 {
	if e.height != 0 {
		return e.height
	}
	return uint64(time.Now().Unix())
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence.
func loadConfig() (*config, error) {
	// Setup the default config
	cfg := &config{
		AppDir:      appDir,
		DataDir:     dataDir,
		LogDir:      logDir,
		ConfigFile:  configFile,
		LogLevel:    logLevel,
		DB:          dbTypeLevelDB,
		DBHost:      dbHost,
		DBUser:      dbUser,
		DBName:      dbName,
		SelfAccount: selfAccount,
		MailLimit:   mailLimit,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified. Printing the help message and catching unknown
	// flag errors is the responsibility of the caller.
	var (
		preCfg    = *cfg
		preParser = flags.NewParser(&preCfg, flags.IgnoreUnknown)
	)
	_, err := preParser.Parse()
	if err != nil {
		return nil, err
	}

	// Update the home directory if specified. The other paths follow the
	// home directory unless they were provided as well.
	if preCfg.AppDir != appDir {
		cfg.AppDir = util.CleanAndExpandPath(preCfg.AppDir)
		if preCfg.DataDir == dataDir {
			cfg.DataDir = filepath.Join(cfg.AppDir, dataDirname)
		}
		if preCfg.LogDir == logDir {
			cfg.LogDir = filepath.Join(cfg.AppDir, logDirname)
		}
		if preCfg.ConfigFile == configFile {
			cfg.ConfigFile = filepath.Join(cfg.AppDir, configFilename)
		}
	}
	if preCfg.ConfigFile != configFile {
		cfg.ConfigFile = preCfg.ConfigFile
	}

	// Load any additional settings from the config file.
	parser := flags.NewParser(cfg, flags.IgnoreUnknown|flags.PassDoubleDash)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			return nil, fmt.Errorf("parse config file: %v", err)
		}
		// No config file was found. This is ok.
	}

	// Parse command line options again to ensure they take
	// precedence.
	_, err = parser.Parse()
	if err != nil {
		return nil, err
	}

	// Check for the show log level. This is used to list supported
	// subsystems and exit.
	if cfg.LogLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set the log level
	err = parseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Clean and expand all file paths
	cfg.AppDir = util.CleanAndExpandPath(cfg.AppDir)
	cfg.DataDir = util.CleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = util.CleanAndExpandPath(cfg.LogDir)
	cfg.ConfigFile = util.CleanAndExpandPath(cfg.ConfigFile)
	cfg.MailCert = util.CleanAndExpandPath(cfg.MailCert)

	// Verify the store settings
	switch cfg.DB {
	case dbTypeLevelDB:
	case dbTypeMySQL:
		if cfg.DBPass == "" {
			return nil, fmt.Errorf("dbpass is required for the %v store",
				dbTypeMySQL)
		}
	default:
		return nil, fmt.Errorf("invalid db type %q", cfg.DB)
	}

	// Verify the environment settings
	if cfg.SelfAccount == "" {
		return nil, fmt.Errorf("selfaccount not provided")
	}
	if cfg.Account == "" {
		cfg.Account = cfg.SelfAccount
	}

	if cfg.MailCert != "" && !util.FileExists(cfg.MailCert) {
		return nil, fmt.Errorf("mail cert not found: %v", cfg.MailCert)
	}

	// Create the app and data directories if they don't exist
	err = os.MkdirAll(cfg.AppDir, 0700)
	if err != nil {
		return nil, fmt.Errorf("create app dir: %v", err)
	}
	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %v", err)
	}

	return cfg, nil
}

// parseAndSetLogLevels applies the debug level. It is either a
// single level for every subsystem or a comma separated list of
// subsystem=level pairs.
func parseAndSetLogLevels(debugLevel string) error {
	if !strings.ContainsAny(debugLevel, ",=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("invalid log level %q", debugLevel)
		}
		setLogLevels(debugLevel)
		return nil
	}

	levels := make(map[string]string)
	for _, pair := range strings.Split(debugLevel, ",") {
		subsys, level, ok := strings.Cut(pair, "=")
		switch {
		case !ok:
			return fmt.Errorf("invalid subsystem/level pair %q", pair)
		case subsystemLoggers[subsys] == nil:
			return fmt.Errorf("invalid subsystem %q, supported "+
				"subsystems %v", subsys, supportedSubsystems())
		case !validLogLevel(level):
			return fmt.Errorf("invalid log level %q", level)
		}
		levels[subsys] = level
	}
	for subsys, level := range levels {
		setLogLevel(subsys, level)
	}
	return nil
}

func validLogLevel(level string) bool {
	_, ok := slog.LevelFromString(level)
	return ok
}
