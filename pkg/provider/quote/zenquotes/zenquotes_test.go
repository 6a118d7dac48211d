package zenquotes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/infobot/pkg/provider/quote/zenquotes"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "quote with author",
			status: http.StatusOK,
			body:   `[{"q":"Act as if what you do makes a difference.","a":"William James","h":"<blockquote>...</blockquote>"}]`,
			want:   "Act as if what you do makes a difference. - William James",
		},
		{
			name:   "quote without author",
			status: http.StatusOK,
			body:   `[{"q":"Nameless wisdom.","a":""}]`,
			want:   "Nameless wisdom.",
		},
		{name: "empty array", status: http.StatusOK, body: `[]`, wantErr: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `[]`, wantErr: true},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/random" {
					t.Errorf("path = %q, want /api/random", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := zenquotes.New(srv.URL).Quote(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got quote %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if got != tt.want {
				t.Errorf("Quote() = %q, want %q", got, tt.want)
			}
		})
	}
}
