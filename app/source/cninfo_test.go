package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func cninfoFixture(recent, stale string) string {
	return fmt.Sprintf(`<html><body>
<div class="result-item">
  <a href="/new/disclosure/detail?announcementId=100001" title="用友网络关于发行H股的公告">用友网络关于发行H股的公告</a>
  <span class="date">%s</span>
</div>
<div class="result-item">
  <a href="/new/disclosure/detail?announcementId=100002">用友网络historical公告</a>
  <span class="date">%s</span>
</div>
<div class="result-item">
  <span class="date">%s</span>
</div>
<div class="result-item">
  <a href="/new/disclosure/detail?announcementId=100003">用友网络无日期公告</a>
</div>
</body></html>`, recent, stale, recent)
}

func TestCNInfo_Fetch(t *testing.T) {
	recent := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	stale := time.Now().AddDate(0, 0, -30).Format("2006-01-02")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "Yonyou" {
			t.Errorf("Expected keyword query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, cninfoFixture(recent, stale))
	}))
	defer server.Close()

	adapter := NewCNInfo(testOptions(server.Client()))
	adapter.baseURL = server.URL

	records, err := adapter.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Stale, linkless and dateless rows are all dropped.
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Title != "用友网络关于发行H股的公告" {
		t.Errorf("Unexpected title: %s", records[0].Title)
	}

	wantLink := server.URL + "/new/disclosure/detail?announcementId=100001"
	if records[0].Link != wantLink {
		t.Errorf("Expected absolute link %s, got %s", wantLink, records[0].Link)
	}
}

func TestCNInfo_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>没有符合条件的结果</p></body></html>")
	}))
	defer server.Close()

	adapter := NewCNInfo(testOptions(server.Client()))
	adapter.baseURL = server.URL

	records, err := adapter.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatalf("Empty result page should not be an error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}
