// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mail

import (
	"sort"
	"testing"
	"time"

	"github.com/dajohi/goemail"
	"github.com/decred/govhub/store/localdb"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// testHistoryDB is an in memory HistoryDB.
type testHistoryDB struct {
	histories map[string]EmailHistory
}

func (h *testHistoryDB) EmailHistoriesGet(accounts []string) (map[string]EmailHistory, error) {
	r := make(map[string]EmailHistory)
	for _, v := range accounts {
		if eh, ok := h.histories[v]; ok {
			r[v] = eh
		}
	}
	return r, nil
}

func (h *testHistoryDB) EmailHistoriesSave(histories map[string]EmailHistory) error {
	for k, v := range histories {
		h.histories[k] = v
	}
	return nil
}

// testSender counts the messages it is asked to send.
type testSender struct {
	sent int
}

func (s *testSender) Send(msg *goemail.Message) error {
	s.sent++
	return nil
}

func newTestClient(now time.Time, histories map[string]EmailHistory) (*client, *testSender) {
	s := &testSender{}
	return &client{
		smtp:            s,
		mailName:        "govhub",
		mailAddress:     "noreply@govhub.test",
		historyDB:       &testHistoryDB{histories: histories},
		rateLimit:       3,
		rateLimitPeriod: defaultRateLimitPeriod,
		now: func() time.Time {
			return now
		},
	}, s
}

func TestFilterRecipients(t *testing.T) {
	now := time.Unix(1700000000, 0)
	old := now.Add(-(defaultRateLimitPeriod + time.Hour)).Unix()
	recent := now.Add(-time.Hour).Unix()

	histories := map[string]EmailHistory{
		// Old timestamps are dropped so the account is valid again.
		"expired.near": {
			Timestamps:       []int64{old, old, old},
			LimitWarningSent: true,
		},
		// Below the limit.
		"below.near": {
			Timestamps: []int64{recent},
		},
		// Hits the limit during this invocation.
		"limit.near": {
			Timestamps: []int64{recent, recent, recent},
		},
		// Already warned.
		"warned.near": {
			Timestamps:       []int64{recent, recent, recent},
			LimitWarningSent: true,
		},
	}
	c, _ := newTestClient(now, histories)

	fr, err := c.filterRecipients(map[string]string{
		"new.near":     "new@mail.test",
		"expired.near": "expired@mail.test",
		"below.near":   "below@mail.test",
		"limit.near":   "limit@mail.test",
		"warned.near":  "warned@mail.test",
	})
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(fr.valid)
	wantValid := []string{"below@mail.test", "expired@mail.test",
		"new@mail.test"}
	if diff := cmp.Diff(wantValid, fr.valid); diff != "" {
		t.Errorf("valid (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"limit@mail.test"}, fr.warning); diff != "" {
		t.Errorf("warning (-want +got):\n%s", diff)
	}

	wantHistories := map[string]EmailHistory{
		"new.near": {
			Timestamps: []int64{now.Unix()},
		},
		"expired.near": {
			Timestamps: []int64{now.Unix()},
		},
		"below.near": {
			Timestamps: []int64{recent, now.Unix()},
		},
		"limit.near": {
			Timestamps:       []int64{recent, recent, recent},
			LimitWarningSent: true,
		},
	}
	diff := cmp.Diff(wantHistories, fr.histories, cmpopts.EquateEmpty())
	if diff != "" {
		t.Errorf("histories (-want +got):\n%s", diff)
	}
}

func TestSendToAccounts(t *testing.T) {
	now := time.Unix(1700000000, 0)
	recent := now.Add(-time.Hour).Unix()
	c, s := newTestClient(now, map[string]EmailHistory{
		"limit.near": {
			Timestamps: []int64{recent, recent, recent},
		},
	})

	err := c.SendToAccounts("subject", "body", map[string]string{
		"alice.near": "alice@mail.test",
		"limit.near": "limit@mail.test",
	})
	if err != nil {
		t.Fatal(err)
	}
	// One message for the valid recipients and one warning.
	if s.sent != 2 {
		t.Errorf("got %v sends, want 2", s.sent)
	}

	// The warning is only sent once.
	err = c.SendToAccounts("subject", "body", map[string]string{
		"limit.near": "limit@mail.test",
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.sent != 2 {
		t.Errorf("got %v sends, want 2", s.sent)
	}
}

func TestDisabled(t *testing.T) {
	m, err := New("", "", "", "", "", false, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.IsEnabled() {
		t.Fatal("mailer enabled without credentials")
	}
	err = m.SendToAccounts("s", "b", map[string]string{"a": "a@mail.test"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHistoryDB(t *testing.T) {
	dir := t.TempDir()
	kv, err := localdb.New(dir, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	db := NewHistoryDB(kv)
	want := map[string]EmailHistory{
		"alice.near": {
			Timestamps:       []int64{1, 2},
			LimitWarningSent: true,
		},
	}
	if err := db.EmailHistoriesSave(want); err != nil {
		t.Fatal(err)
	}
	got, err := db.EmailHistoriesGet([]string{"alice.near", "bob.near"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
