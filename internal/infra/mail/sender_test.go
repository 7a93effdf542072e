package mail

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"shoestore/internal/config"
	"shoestore/internal/infra/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"
)

func writeTmpl(t *testing.T, dir, name, html, txt string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".html"), []byte(html), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(txt), 0o600))
}

func TestSender_RendersBothParts(t *testing.T) {
	dir := t.TempDir()
	writeTmpl(t, dir, "order_placed", "<p>Order #{{.order_id}}</p>", "Order #{{.order_id}}")

	var sent *gomail.Message
	s := &Sender{from: "shop@example.com", tmplDir: dir, send: func(m *gomail.Message) error {
		sent = m
		return nil
	}}

	err := s.Send(queue.EmailMessage{
		To:       "a@example.com",
		Subject:  "Order placed",
		Template: "order_placed",
		Data:     map[string]any{"order_id": 42},
	})
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"a@example.com"}, sent.GetHeader("To"))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Order #42")
}

func TestSender_MissingTemplate(t *testing.T) {
	s := &Sender{from: "shop@example.com", tmplDir: t.TempDir(), send: func(m *gomail.Message) error {
		t.Fatal("must not send")
		return nil
	}}

	err := s.Send(queue.EmailMessage{To: "a@example.com", Template: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render html")
}

// NewSenderはDialerで送る（つながらなければエラー）
func TestNewSender_SendsThroughDialer(t *testing.T) {
	dir := t.TempDir()
	writeTmpl(t, dir, "password_reset", "<a>{{.reset_url}}</a>", "{{.reset_url}}")

	s := NewSender(config.NotifierConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: 1,
		SMTPFrom: "shop@example.com",
		TmplDir:  dir,
	})
	require.NotNil(t, s.send)

	err := s.Send(queue.EmailMessage{
		To:       "a@example.com",
		Subject:  "Reset",
		Template: "password_reset",
		Data:     map[string]any{"reset_url": "http://localhost/reset"},
	})
	assert.Error(t, err)
}
