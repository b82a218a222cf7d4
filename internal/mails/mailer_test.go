package mails

import (
	"errors"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*mail.Message
}

func (d *fakeDialer) DialAndSend(msgs ...*mail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("connection refused")
	}
	d.sent = append(d.sent, msgs...)
	return nil
}

func newTestMailer(d *fakeDialer, attempts int) *Mailer {
	m := newMailer(d, "Movie Catalog <noreply@example.com>", attempts)
	m.backoff = 0
	return m
}

var welcomeData = map[string]any{
	"username": "root",
	"adminID":  int64(7),
}

func TestRenderAdminWelcome(t *testing.T) {
	m := newTestMailer(&fakeDialer{}, 1)
	e, err := m.render("admin_welcome.html", welcomeData)
	require.NoError(t, err)
	assert.Equal(t, "Your movie catalog admin account", e.subject)
	assert.Contains(t, e.plainBody, "Account ID: 7")
	assert.Contains(t, e.htmlBody, "<b>root</b>")
}

func TestRenderEscapesHTML(t *testing.T) {
	m := newTestMailer(&fakeDialer{}, 1)
	e, err := m.render("admin_welcome.html", map[string]any{"username": "<script>", "adminID": 1})
	require.NoError(t, err)
	assert.NotContains(t, e.htmlBody, "<script>")
}

func TestSendUnknownTemplate(t *testing.T) {
	d := &fakeDialer{}
	err := newTestMailer(d, 3).Send("root@example.com", "missing.html", nil)
	assert.ErrorContains(t, err, "unknown template")
	assert.Zero(t, d.calls)
}

func TestSendRetries(t *testing.T) {
	testCases := []struct {
		name          string
		failures      int
		attempts      int
		expectedCalls int
		expectErr     bool
	}{
		{"first try", 0, 3, 1, false},
		{"succeeds on last attempt", 2, 3, 3, false},
		{"gives up", 5, 3, 3, true},
		{"zero attempts means one", 1, 0, 1, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := &fakeDialer{failures: tc.failures}
			err := newTestMailer(d, tc.attempts).Send("root@example.com", "admin_welcome.html", welcomeData)
			assert.Equal(t, tc.expectedCalls, d.calls)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Empty(t, d.sent)
				return
			}
			require.NoError(t, err)
			require.Len(t, d.sent, 1)
			msg := d.sent[0]
			assert.Equal(t, []string{"root@example.com"}, msg.GetHeader("To"))
			assert.Equal(t, []string{"Movie Catalog <noreply@example.com>"}, msg.GetHeader("From"))
			assert.Equal(t, []string{"Your movie catalog admin account"}, msg.GetHeader("Subject"))
		})
	}
}
