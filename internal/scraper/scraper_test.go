package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestExtractText_PrefersArticle(t *testing.T) {
	page := `<html><body>
<nav>Home | About</nav>
<main><p>Main text</p><article><h1>Title</h1>
<p>First   paragraph.</p><script>var x = 1;</script>
<aside>Related links</aside><p>Second <b>bold</b> paragraph.</p></article></main>
<footer>Copyright</footer></body></html>`

	got := ExtractText(docFrom(t, page))
	want := "Title First paragraph. Second bold paragraph."
	if got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
}

func TestExtractText_FallsBackToMainThenBody(t *testing.T) {
	mainPage := `<html><body><header>Top</header><main><p>In main</p></main><p>Outside</p></body></html>`
	if got := ExtractText(docFrom(t, mainPage)); got != "In main" {
		t.Errorf("main fallback = %q, want %q", got, "In main")
	}

	bodyPage := `<html><head><style>body{}</style></head><body><div>Only <i>body</i></div>
<iframe src="x"></iframe><footer>Foot</footer></body></html>`
	if got := ExtractText(docFrom(t, bodyPage)); got != "Only body" {
		t.Errorf("body fallback = %q, want %q", got, "Only body")
	}
}

func TestExtract_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<html><body><article><p>Hello world</p></article></body></html>`)
	}))
	defer srv.Close()

	text, err := NewExtractor(5*time.Second, "").Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("text = %q", text)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want browser agent", gotUA)
	}
}

func TestExtract_Failures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>only()</script></body></html>`)
	}))
	defer empty.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	ex := NewExtractor(200*time.Millisecond, "")
	for _, u := range []string{notFound.URL, empty.URL, slow.URL, "http://127.0.0.1:1/", "::bad-url"} {
		text, err := ex.Extract(context.Background(), u)
		if text != "" {
			t.Errorf("Extract(%s) text = %q, want empty", u, text)
		}
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Errorf("Extract(%s) error = %v, want *ExtractionError", u, err)
		}
	}
}
