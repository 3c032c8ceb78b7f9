// Package documents renders sanction letters into the static directory
// served by the HTTP boundary.
package documents

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/russross/blackfriday/v2"

	"github.com/kiosk404/loamy/pkg/logger"
)

const (
	moduleName = "documents"

	DefaultURLPrefix = "/static"
	DefaultSigner    = "The Loamy Lending Team"
)

// Config configures a Generator.
type Config struct {
	// Dir is where documents are written.
	Dir string
	// URLPrefix is the public path Dir is served under.
	URLPrefix string
	// Signer signs every letter.
	Signer string
}

// Generator writes sanction letters as standalone HTML files.
type Generator struct {
	dir       string
	urlPrefix string
	signer    string
	now       func() time.Time
}

// NewGenerator creates a Generator, creating Dir if needed.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("document directory is required")
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = DefaultURLPrefix
	}
	if cfg.Signer == "" {
		cfg.Signer = DefaultSigner
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}
	return &Generator{
		dir:       cfg.Dir,
		urlPrefix: "/" + strings.Trim(cfg.URLPrefix, "/"),
		signer:    cfg.Signer,
		now:       time.Now,
	}, nil
}

// SanctionLetter writes the sanction letter for customer and amount and
// returns its public link.
func (g *Generator) SanctionLetter(ctx context.Context, customer string, amount float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slug := Slug(customer)
	if slug == "" {
		return "", fmt.Errorf("customer name %q has no usable characters", customer)
	}

	body := blackfriday.Run([]byte(g.letterMarkdown(customer, amount)),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.HardLineBreak))
	page := heredoc.Docf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="utf-8"><title>Loan Sanction Letter</title></head>
		<body>
		%s</body>
		</html>
	`, body)

	file := "sanction_" + slug + ".html"
	if err := os.WriteFile(filepath.Join(g.dir, file), []byte(page), 0644); err != nil {
		return "", fmt.Errorf("write sanction letter: %w", err)
	}
	link := path.Join(g.urlPrefix, file)
	logger.InfoX(moduleName, "[Documents] sanction letter for %s (%.2f) written to %s", customer, amount, link)
	return link, nil
}

func (g *Generator) letterMarkdown(customer string, amount float64) string {
	return heredoc.Docf(`
		# LOAN SANCTION LETTER

		*%s*

		Dear %s,

		This is to confirm that your personal loan of **$%s** has been reviewed and sanctioned.

		We are excited to be a part of your financial journey.

		Sincerely,
		%s
	`, g.now().Format("January 2, 2006"), customer, FormatAmount(amount), g.signer)
}

// Slug reduces a customer name to a lowercase file name fragment.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// FormatAmount renders amount with thousands separators and two decimals.
func FormatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + frac
	}
	return b.String() + frac
}
