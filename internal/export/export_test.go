package export

import (
	"context"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

func sampleDoc() domain.Document {
	return domain.Document{
		Title:       "技术日报 2026-08-28",
		Markdown:    "# 🚀 技术日报\n\n**bold** and [a link](https://example.com)\n",
		GeneratedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
}

func TestFileExport(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "digests")
	exp := NewFile(dir, nil)

	if exp.Name() != "file" {
		t.Errorf("name = %q", exp.Name())
	}
	doc := sampleDoc()
	if err := exp.Export(context.Background(), doc); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dated, err := os.ReadFile(filepath.Join(dir, "digest-2026-08-28.md"))
	if err != nil {
		t.Fatalf("read dated file: %v", err)
	}
	if string(dated) != doc.Markdown {
		t.Error("dated file content mismatch")
	}

	latest, err := os.ReadFile(filepath.Join(dir, "latest.md"))
	if err != nil {
		t.Fatalf("read latest.md: %v", err)
	}
	if string(latest) != doc.Markdown {
		t.Error("latest.md content mismatch")
	}
}

func TestEmailExport(t *testing.T) {
	t.Parallel()

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	exp := NewEmail(config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "digest@example.com",
		Password: "secret",
		To:       []string{"reader@example.com"},
	}, nil)
	exp.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := exp.Export(context.Background(), sampleDoc()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	// From falls back to the SMTP username.
	if gotFrom != "digest@example.com" {
		t.Errorf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "reader@example.com" {
		t.Errorf("to = %v", gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"MIME-Version: 1.0",
		"multipart/alternative",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
		"Subject: =?UTF-8?Q?",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestEmailExportIncompleteConfig(t *testing.T) {
	t.Parallel()

	exp := NewEmail(config.EmailConfig{Enabled: true, Host: "smtp.example.com"}, nil)
	exp.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Error("send should not be called with incomplete config")
		return nil
	}
	if err := exp.Export(context.Background(), sampleDoc()); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestMarkdownToHTML(t *testing.T) {
	t.Parallel()

	in := "# Title\n**bold** *em* [link](https://example.com)"
	out := markdownToHTML(in)

	for _, want := range []string{
		"<h1>Title</h1>",
		"<strong>bold</strong>",
		"<em>em</em>",
		`<a href="https://example.com">link</a>`,
		"<br>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q in %q", want, out)
		}
	}
}
