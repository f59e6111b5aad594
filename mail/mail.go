// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mail provides the SMTP client that govhub notifications are
// delivered through.
package mail

import (
	"github.com/decred/govhub/store"
)

// Mailer is an interface used to send emails to a list of recipients.
type Mailer interface {
	// IsEnabled determines if the smtp server is enabled or not.
	IsEnabled() bool

	// SendTo sends an email to a list of recipient email addresses.
	// This function does not rate limit emails.
	SendTo(subject, body string, recipients []string) error

	// SendToAccounts sends an email to the provided accounts. The
	// recipients map is keyed by account name and contains the email
	// address of the account. The number of emails that any single
	// account can receive during a rate limit period is limited.
	SendToAccounts(subject, body string, recipients map[string]string) error
}

// New returns a new client that implements Mailer. Mail is disabled when any
// of the smtp credentials are missing.
func New(host, user, password, emailAddress, certPath string, skipVerify bool, limit int, kv store.BlobKV) (Mailer, error) {
	if host == "" || user == "" || password == "" {
		log.Infof("Mail: DISABLED")
		return &client{
			disabled: true,
		}, nil
	}
	return newClient(host, user, password, emailAddress, certPath,
		skipVerify, limit, NewHistoryDB(kv))
}
