package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEastmoney_Fetch(t *testing.T) {
	recent := time.Now().Add(-48 * time.Hour).Format("2006-01-02")
	stale := time.Now().AddDate(0, 0, -60).Format("2006-01-02")

	payload := fmt.Sprintf(`{
		"data": {
			"list": [
				{"art_code": "AN001", "title": "关于发行H股并在香港上市的公告", "notice_date": "%s 00:00:00"},
				{"art_code": "AN002", "title": "", "notice_date": "%s 00:00:00"},
				{"art_code": "AN003", "title": "历史公告", "notice_date": "%s 00:00:00"},
				{"art_code": "AN004", "title": "日期异常的公告", "notice_date": "not-a-date"}
			]
		}
	}`, recent, recent, stale)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("stock_list") != "600588" {
			t.Errorf("Expected stock_list query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	adapter := NewEastmoney(testOptions(server.Client()))
	adapter.apiURL = server.URL

	records, err := adapter.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Untitled, stale and unparseable entries are all dropped.
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].RawID != "AN001" {
		t.Errorf("Expected raw ID AN001, got %s", records[0].RawID)
	}
	if records[0].Link == "" {
		t.Error("Expected a detail page link")
	}
}

func TestEastmoney_EmptyResultSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"list": []}}`)
	}))
	defer server.Close()

	adapter := NewEastmoney(testOptions(server.Client()))
	adapter.apiURL = server.URL

	records, err := adapter.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("Empty result set should not be an error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestEastmoney_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>definitely not json</html>")
	}))
	defer server.Close()

	adapter := NewEastmoney(testOptions(server.Client()))
	adapter.apiURL = server.URL

	if _, err := adapter.Fetch(context.Background(), 7); err == nil {
		t.Error("Expected an error for a malformed response")
	}
}

func TestParseNoticeDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2026-03-01 00:00:00", "2026-03-01", false},
		{"2026-03-01", "2026-03-01", false},
		{" 2026-03-01 12:34:56", "2026-03-01", false},
		{"", "", true},
		{"03/01/2026", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseNoticeDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Format("2006-01-02"))
			}
		})
	}
}
