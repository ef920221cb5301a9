package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsEventURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"eventbrite domain", "https://www.eventbrite.com/e/sales-summit-tickets-123", true},
		{"luma domain", "https://lu.ma/outbound-meetup", true},
		{"zoom", "https://us02web.zoom.us/j/99999", true},
		{"register path", "https://acme.com/register?utm=x", true},
		{"webinar path", "https://vendor.io/webinar/q3-pipeline", true},
		{"event path", "https://vendor.io/events/kickoff", true},
		{"plain article", "https://example.com/blog/cold-email-teardown", false},
		{"substack post", "https://gtm.substack.com/p/discovery-questions", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEventURL(tt.url); got != tt.want {
				t.Errorf("IsEventURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilterCandidates(t *testing.T) {
	in := []string{
		"https://example.com/blog/a",
		"https://example.com/blog/a", // duplicate
		"https://www.eventbrite.com/e/x",
		"not a url",
		"ftp://example.com/file",
		"  ",
		"https://example.com/blog/b",
	}
	got := FilterCandidates(in)
	want := []string{"https://example.com/blog/a", "https://example.com/blog/b"}
	if len(got) != len(want) {
		t.Fatalf("FilterCandidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FilterCandidates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnrichLinks_SkipsEventURLsWithoutFetching(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<html><head><title>Cold Email Teardown</title></head><body><article>` +
			`<h1>Cold Email Teardown</h1>` +
			`<p>A long enough paragraph about outbound prospecting techniques and how to run discovery calls effectively. ` +
			`It keeps going so the readability extractor treats this as real article content rather than boilerplate chrome. ` +
			`Subject lines, personalization, and follow-up cadence all get covered in enough depth to pass scoring.</p>` +
			`<p>A second paragraph reinforces the density heuristics used by readability implementations, describing how ` +
			`multithreading replies into the original email keeps context for the prospect and lifts response rates.</p>` +
			`</article></body></html>`))
	}))
	defer srv.Close()

	e := New(nil)
	articles := e.EnrichLinks(context.Background(), []string{
		srv.URL + "/blog/post",
		srv.URL + "/register", // filtered before fetch
	})

	if hits != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", hits)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if articles[0].URL != srv.URL+"/blog/post" {
		t.Errorf("unexpected article URL %q", articles[0].URL)
	}
}

func TestEnrichLinks_FetchFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(nil)
	articles := e.EnrichLinks(context.Background(), []string{srv.URL + "/blog/broken"})
	if len(articles) != 0 {
		t.Errorf("expected no articles on fetch failure, got %d", len(articles))
	}
}
