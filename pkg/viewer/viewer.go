// Package viewer loads the 3D model viewer script on demand. The script is
// fetched at most once at a time, shared by every caller, and kept after a
// successful load. A failed load leaves the loader retryable.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/media"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MaxScriptSize caps the downloaded script.
const MaxScriptSize = 8 << 20

// ErrEmptyScript is returned when the script URL serves no content.
var ErrEmptyScript = errors.New("viewer script is empty")

// State is the loader lifecycle.
type State int

const (
	NotRequested State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not_requested"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Needed reports whether previews of mediaType require the viewer.
func Needed(mediaType string) bool {
	return media.IsModel(mediaType)
}

// Loader fetches the viewer script from a fixed URL.
type Loader struct {
	url    string
	client *http.Client
	group  singleflight.Group

	mu     sync.RWMutex
	state  State
	script []byte
	err    error
}

// NewLoader returns a loader for url. A nil client uses one with timeout.
func NewLoader(url string, client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Loader{url: strings.TrimSpace(url), client: client}
}

// URL returns the script location.
func (l *Loader) URL() string { return l.url }

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the error of the last failed load.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Script returns the loaded script, or nil before a successful load.
func (l *Loader) Script() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.script
}

// Load returns the script, fetching it unless already loaded. Concurrent
// callers share one fetch.
func (l *Loader) Load(ctx context.Context) ([]byte, error) {
	if script := l.readyScript(); script != nil {
		return script, nil
	}

	ch := l.group.DoChan("script", func() (any, error) {
		if script := l.readyScript(); script != nil {
			return script, nil
		}
		l.setState(Loading, nil, nil)
		// detached so one caller's cancellation does not fail the others
		script, err := l.fetch(context.WithoutCancel(ctx))
		if err != nil {
			l.setState(Failed, nil, err)
			zap.L().Warn("viewer script load failed", zap.String("url", l.url), zap.Error(err))
			return nil, err
		}
		l.setState(Ready, script, nil)
		zap.L().Debug("viewer script loaded", zap.String("url", l.url), zap.Int("bytes", len(script)))
		return script, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (l *Loader) readyScript() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.state == Ready {
		return l.script
	}
	return nil
}

func (l *Loader) setState(s State, script []byte, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
	l.err = err
	if script != nil {
		l.script = script
	}
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("viewer script request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viewer script fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("viewer script fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxScriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("viewer script read: %w", err)
	}
	if len(body) > MaxScriptSize {
		return nil, fmt.Errorf("viewer script exceeds %d bytes", MaxScriptSize)
	}
	if len(body) == 0 {
		return nil, ErrEmptyScript
	}
	return body, nil
}
