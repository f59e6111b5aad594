// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mail

import (
	"crypto/tls"
	"crypto/x509"
	"net/mail"
	"net/url"
	"os"
	"time"

	"github.com/dajohi/goemail"
	"github.com/pkg/errors"
)

const (
	// defaultRateLimitPeriod is the window that the per account email
	// limit applies to.
	defaultRateLimitPeriod = 24 * time.Hour

	limitEmailSubject = "Email Rate Limit Hit"
	limitEmailBody    = `
Your email rate limit for the past 24 hours has been hit. You will not
receive any govhub notification emails for 24 hours.
`
)

// sender sends a prepared message. It is satisfied by *goemail.SMTP.
type sender interface {
	Send(msg *goemail.Message) error
}

// client sends govhub emails from a single sender address. Emails sent to
// accounts are rate limited per account.
type client struct {
	smtp        sender
	mailName    string
	mailAddress string
	historyDB   HistoryDB
	disabled    bool

	// An account that received rateLimit emails during the last
	// rateLimitPeriod is sent a single warning and nothing else until
	// its oldest timestamp leaves the period.
	rateLimit       int
	rateLimitPeriod time.Duration

	now func() time.Time
}

var _ Mailer = (*client)(nil)

// IsEnabled satisfies the Mailer interface.
func (c *client) IsEnabled() bool {
	return !c.disabled
}

// SendTo sends the email to every recipient as BCC.
//
// This function satisfies the Mailer interface.
func (c *client) SendTo(subject, body string, recipients []string) error {
	if c.disabled || len(recipients) == 0 {
		return nil
	}
	msg := goemail.NewMessage(c.mailAddress, subject, body)
	msg.SetName(c.mailName)
	for _, r := range recipients {
		msg.AddBCC(r)
	}
	return c.smtp.Send(msg)
}

// SendToAccounts sends the email to the accounts that are below their rate
// limit and a warning to the accounts that just reached it.
//
// This function satisfies the Mailer interface.
func (c *client) SendToAccounts(subject, body string, recipients map[string]string) error {
	if c.disabled || len(recipients) == 0 {
		return nil
	}
	fr, err := c.filterRecipients(recipients)
	if err != nil {
		return err
	}
	if err := c.SendTo(subject, body, fr.valid); err != nil {
		return errors.Wrap(err, "send")
	}
	if err := c.SendTo(limitEmailSubject, limitEmailBody, fr.warning); err != nil {
		return errors.Wrap(err, "send limit warning")
	}
	return c.historyDB.EmailHistoriesSave(fr.histories)
}

// filteredRecipients is the outcome of filterRecipients. Histories holds the
// updated history of every account in valid or warning.
type filteredRecipients struct {
	valid     []string
	warning   []string
	histories map[string]EmailHistory
}

// admission is the rate limit decision for a single account.
type admission int

const (
	admitSend admission = iota
	admitWarn
	admitDrop
)

// admit returns the decision for an account with history h and its updated
// history.
func (c *client) admit(h EmailHistory, now time.Time) (EmailHistory, admission) {
	cutoff := now.Add(-c.rateLimitPeriod)
	kept := h.Timestamps[:0:0]
	for _, ts := range h.Timestamps {
		if !time.Unix(ts, 0).Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	h.Timestamps = kept

	switch {
	case len(h.Timestamps) < c.rateLimit:
		h.Timestamps = append(h.Timestamps, now.Unix())
		h.LimitWarningSent = false
		return h, admitSend
	case !h.LimitWarningSent:
		h.LimitWarningSent = true
		return h, admitWarn
	}
	return h, admitDrop
}

// filterRecipients splits the map[account]email into the addresses that
// receive the email and the addresses that receive the limit warning.
func (c *client) filterRecipients(accounts map[string]string) (*filteredRecipients, error) {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	hs, err := c.historyDB.EmailHistoriesGet(names)
	if err != nil {
		return nil, err
	}

	now := c.now()
	fr := &filteredRecipients{
		histories: make(map[string]EmailHistory, len(accounts)),
	}
	for name, addr := range accounts {
		h, verdict := c.admit(hs[name], now)
		switch verdict {
		case admitSend:
			fr.valid = append(fr.valid, addr)
		case admitWarn:
			fr.warning = append(fr.warning, addr)
		default:
			continue
		}
		fr.histories[name] = h
	}
	return fr, nil
}

// newTLSConfig returns the TLS config of the SMTP connection. The cert at
// certPath is trusted in addition to the system roots.
func newTLSConfig(certPath string, skipVerify bool) (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: skipVerify,
	}
	if skipVerify || certPath == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(certPath)
	if err != nil {
		return nil, err
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Errorf("no certificates in %v", certPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func newClient(host, user, password, emailAddress, certPath string, skipVerify bool, rateLimit int, db HistoryDB) (*client, error) {
	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(user, password),
		Host:   host,
	}
	from, err := mail.ParseAddress(emailAddress)
	if err != nil {
		return nil, errors.Wrap(err, "mail address")
	}
	tlsConfig, err := newTLSConfig(certPath, skipVerify)
	if err != nil {
		return nil, err
	}
	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, err
	}

	log.Infof("Mail host: smtps://%v:[password]@%v", user, host)
	log.Infof("Mail address: %v", from)

	return &client{
		smtp:            smtp,
		mailName:        from.Name,
		mailAddress:     from.Address,
		historyDB:       db,
		rateLimit:       rateLimit,
		rateLimitPeriod: defaultRateLimitPeriod,
		now:             time.Now,
	}, nil
}
