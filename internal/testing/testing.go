// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/seisiun/tunelog/internal/services"
	"github.com/seisiun/tunelog/internal/shared"
)

// MockMatcher is a test double for [services.Matcher].
//
// Results maps normalized tune names to matches; names missing from the map
// report no match. Err, when set, fails every call.
type MockMatcher struct {
	Results map[string]*services.Match
	Err     error

	mu    sync.Mutex
	calls []string
}

func (m *MockMatcher) Match(ctx context.Context, name string) (*services.Match, error) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if match, ok := m.Results[shared.NormalizeTuneKey(name)]; ok {
		return match, nil
	}
	return nil, shared.ErrNoMatch
}

// Calls returns the names Match has been invoked with, in call order.
func (m *MockMatcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// FakeClipboard is an in-memory stand-in for the OS clipboard.
type FakeClipboard struct {
	Text     string
	ReadErr  error
	WriteErr error
}

func (f *FakeClipboard) ReadText() (string, error) {
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	return f.Text, nil
}

func (f *FakeClipboard) WriteText(text string) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.Text = text
	return nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
