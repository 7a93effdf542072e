package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"

	"shoestore/internal/config"
	"shoestore/internal/infra/queue"

	gomail "gopkg.in/gomail.v2"
)

// SMTPで送る。テンプレートは TmplDir/<name>.html と <name>.txt
type Sender struct {
	from    string
	tmplDir string
	send    func(m *gomail.Message) error
}

func NewSender(cfg config.NotifierConfig) *Sender {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	d.SSL = cfg.SMTPSSL
	return &Sender{
		from:    cfg.SMTPFrom,
		tmplDir: cfg.TmplDir,
		send:    func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *Sender) Send(msg queue.EmailMessage) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	return s.send(m)
}

func (s *Sender) build(msg queue.EmailMessage) (*gomail.Message, error) {
	htmlBody, err := s.renderHTML(msg.Template, msg.Data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(msg.Template, msg.Data)
	if err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)
	return m, nil
}

func (s *Sender) renderHTML(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.tmplDir, name+".html"))
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Sender) renderPlain(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.tmplDir, name+".txt"))
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
