package splatoon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestClient_FetchSchedulesAndTranslation(t *testing.T) {
	schedules := loadFixture(t, "schedules.json")
	zh := loadFixture(t, "locale_zh-CN.json")

	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "idacast/") {
			t.Errorf("unexpected user agent %q", ua)
		}
		switch r.URL.Path {
		case "/data/schedules.json":
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write(gzipped(t, schedules))
		case "/data/locale/zh-CN.json":
			_, _ = w.Write(zh)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL + "/data"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	s, err := client.FetchSchedules(context.Background())
	if err != nil {
		t.Fatalf("FetchSchedules: %v", err)
	}
	if len(s.Regular) != 3 || len(s.AnarchySeries) != 2 {
		t.Fatalf("unexpected snapshot counts %v", s.Counts())
	}

	dict, err := client.FetchTranslation(context.Background(), "zh-cn")
	if err != nil {
		t.Fatalf("FetchTranslation: %v", err)
	}
	if dict["VnNTdGFnZS0y"] != "鳗鲶区" {
		t.Fatalf("unexpected dictionary entry %q", dict["VnNTdGFnZS0y"])
	}

	mu.Lock()
	got := append([]string(nil), paths...)
	mu.Unlock()
	if len(got) != 2 || got[1] != "/data/locale/zh-CN.json" {
		t.Fatalf("unexpected request paths %v", got)
	}

	if _, err := client.FetchTranslation(context.Background(), "fr-FR"); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork on 404, got %v", err)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		rt      roundTripFunc
		wantErr error
	}{
		{
			name: "transport failure",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: no such host")
			},
			wantErr: ErrNetwork,
		},
		{
			name: "server error",
			rt: func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(""))}, nil
			},
			wantErr: ErrNetwork,
		},
		{
			name: "html body",
			rt: func(*http.Request) (*http.Response, error) {
				body := "<!DOCTYPE html><html><head><title>Login</title></head><body>portal</body></html>"
				return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}, nil
			},
			wantErr: ErrMalformedPayload,
		},
		{
			name: "wrong shape",
			rt: func(*http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(`{"data": []}`))}, nil
			},
			wantErr: ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(ClientConfig{HTTPClient: &http.Client{Transport: tt.rt}})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = client.FetchSchedules(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
