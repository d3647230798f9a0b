// Package session supplies the cookie header for the fantasy service from
// the flat credential file kept up to date by the browser extension.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	report_provider_read    = "provider.read"
	report_provider_refresh = "provider.refresh"
)

var ErrNoCredentials = errors.New("session: no cookies in credential file")

// File is the on-disk shape of the credential file.
type File struct {
	RequestCookies map[string]string `json:"Request Cookies"`
}

// Header joins the cookies into a single `Cookie` header value, names are
// sorted so the header is stable across reads.
func (f File) Header() string {
	names := make([]string, 0, len(f.RequestCookies))
	for name := range f.RequestCookies {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%s", name, f.RequestCookies[name])
	}
	return strings.Join(parts, "; ")
}

// Provider reads the credential file lazily and re-reads it whenever the
// file's modification time changes.
type Provider struct {
	path string
	tel  telemetry.API

	mutex   sync.Mutex
	header  string
	modTime time.Time
}

func NewProvider(path string, tel telemetry.API) *Provider {
	assert.NotEmptyStr(path)
	assert.NotNil(tel)
	return &Provider{
		path: path,
		tel:  telemetry.NewScopedAPI("session", tel),
	}
}

func (p *Provider) Cookie(ctx context.Context) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	info, err := os.Stat(p.path)
	if err != nil {
		p.tel.ReportBroken(report_provider_read, err, p.path)
		return "", err
	}
	if p.header != "" && info.ModTime().Equal(p.modTime) {
		return p.header, nil
	}
	return p.read(info.ModTime())
}

// Refresh drops the cached header and reads the credential file again, it
// is called after the upstream rejected the current cookies.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.header = ""
	info, err := os.Stat(p.path)
	if err != nil {
		p.tel.ReportBroken(report_provider_refresh, err, p.path)
		return err
	}
	_, err = p.read(info.ModTime())
	if err != nil {
		p.tel.ReportBroken(report_provider_refresh, err)
		return err
	}
	return nil
}

func (p *Provider) read(modTime time.Time) (string, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		p.tel.ReportBroken(report_provider_read, err, p.path)
		return "", err
	}
	var file File
	err = json.Unmarshal(content, &file)
	if err != nil {
		err = fmt.Errorf("decode %s: %w", p.path, err)
		p.tel.ReportBroken(report_provider_read, err)
		return "", err
	}
	if len(file.RequestCookies) == 0 {
		return "", ErrNoCredentials
	}

	p.header = file.Header()
	p.modTime = modTime
	p.tel.ReportDebug("loaded credentials", "cookies", len(file.RequestCookies))
	return p.header, nil
}
