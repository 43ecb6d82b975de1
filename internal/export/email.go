package export

import (
	"context"
	"fmt"
	"log/slog"
	"mime/quotedprintable"
	"net/smtp"
	"regexp"
	"strings"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// Email delivers the digest over SMTP with STARTTLS as a
// multipart/alternative message: the markdown as text/plain plus a
// lightly converted text/html part.
type Email struct {
	cfg    config.EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *slog.Logger
}

var _ ports.Exporter = (*Email)(nil)

func NewEmail(cfg config.EmailConfig, logger *slog.Logger) *Email {
	return &Email{cfg: cfg, send: smtp.SendMail, logger: logger}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Export(ctx context.Context, doc domain.Document) error {
	if e.cfg.Username == "" || e.cfg.Password == "" || len(e.cfg.To) == 0 {
		return fmt.Errorf("export email: smtp configuration incomplete")
	}

	from := e.cfg.From
	if from == "" {
		from = e.cfg.Username
	}

	msg, err := buildMessage(from, e.cfg.To, doc)
	if err != nil {
		return fmt.Errorf("export email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	if err := e.send(addr, auth, from, e.cfg.To, msg); err != nil {
		return fmt.Errorf("export email: %w", err)
	}

	if e.logger != nil {
		e.logger.Info("digest mailed", "to", strings.Join(e.cfg.To, ", "))
	}
	return nil
}

const mimeBoundary = "digest-alt-boundary"

func buildMessage(from string, to []string, doc domain.Document) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&sb, "Subject: =?UTF-8?Q?%s?=\r\n", encodeQ(doc.Title))
	sb.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	if err := writePart(&sb, "text/plain", doc.Markdown); err != nil {
		return nil, err
	}
	if err := writePart(&sb, "text/html", markdownToHTML(doc.Markdown)); err != nil {
		return nil, err
	}
	fmt.Fprintf(&sb, "--%s--\r\n", mimeBoundary)

	return []byte(sb.String()), nil
}

func writePart(sb *strings.Builder, contentType, body string) error {
	fmt.Fprintf(sb, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(sb, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	sb.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	w := quotedprintable.NewWriter(sb)
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	sb.WriteString("\r\n")
	return nil
}

// encodeQ produces a minimal RFC 2047 Q-encoded word for header use.
func encodeQ(s string) string {
	var sb strings.Builder
	for _, b := range []byte(s) {
		switch {
		case b == ' ':
			sb.WriteByte('_')
		case b >= '!' && b <= '~' && b != '=' && b != '?' && b != '_':
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, "=%02X", b)
		}
	}
	return sb.String()
}

var (
	headerRe = regexp.MustCompile(`(?m)^(#{1,6}) (.+)$`)
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
	linkRe   = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
)

// markdownToHTML covers just the constructs the renderer emits: headers,
// bold, italics, links. Good enough for a mail client preview; the plain
// part carries the authoritative text.
func markdownToHTML(markdown string) string {
	html := headerRe.ReplaceAllStringFunc(markdown, func(line string) string {
		m := headerRe.FindStringSubmatch(line)
		level := len(m[1])
		return fmt.Sprintf("<h%d>%s</h%d>", level, m[2], level)
	})
	html = boldRe.ReplaceAllString(html, "<strong>$1</strong>")
	html = italicRe.ReplaceAllString(html, "<em>$1</em>")
	html = linkRe.ReplaceAllString(html, `<a href="$2">$1</a>`)
	html = strings.ReplaceAll(html, "\n", "<br>")

	return `<html><body style="font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px;">` +
		html + `</body></html>`
}
