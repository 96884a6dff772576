package newsletter

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/deusflow/newsletter/internal/news"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	highlightSummaryRunes = 150
	readMoreLabel         = "Read full article"
	noArticles            = "_No articles available._"

	highlightsTitle = "🔍 Highlights"
	interestPrefix  = "🧑‍💻 "
	countryPrefix   = "🌍 "
)

// Filename returns "<Name_with_underscores>_Newsletter.<ext>".
func Filename(d *Document, ext string) string {
	return strings.ReplaceAll(d.Profile.Name, " ", "_") + "_Newsletter." + strings.TrimPrefix(ext, ".")
}

// InterestTitle and CountryTitle are the section headings without decoration.
func (d *Document) InterestTitle() string { return d.Profile.Interest + " News" }
func (d *Document) CountryTitle() string  { return d.Profile.DisplayCountry() + " News" }

// RenderMarkdown renders the document as Markdown.
func RenderMarkdown(d *Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 📰 %s\n\n", inline(d.Greeting))
	if !d.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_%s_\n\n", d.GeneratedAt.Format("Monday, January 2, 2006"))
	}

	fmt.Fprintf(&b, "## %s\n\n", highlightsTitle)
	if len(d.Highlights) == 0 {
		b.WriteString(noArticles + "\n\n")
	}
	for i, a := range d.Highlights {
		fmt.Fprintf(&b, "%d. **[%s](%s)**  \n", i+1, inline(a.Title), a.URL)
		fmt.Fprintf(&b, "   %s\n\n", inline(shorten(flatten(a.Summary), highlightSummaryRunes)))
	}

	writeSection(&b, interestPrefix+inline(d.InterestTitle()), d.Profession)
	writeSection(&b, countryPrefix+inline(d.CountryTitle()), d.Country)

	b.WriteString("---\n")
	return b.String()
}

func writeSection(b *strings.Builder, title string, articles []news.Article) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(articles) == 0 {
		b.WriteString(noArticles + "\n\n---\n\n")
		return
	}
	for _, a := range articles {
		writeArticle(b, a)
	}
}

func writeArticle(b *strings.Builder, a news.Article) {
	fmt.Fprintf(b, "### %s\n\n", inline(a.Title))
	fmt.Fprintf(b, "*Source: %s | Published: %s*\n\n", inline(a.SourceHost), inline(a.Published()))
	fmt.Fprintf(b, "%s\n\n", inline(a.Summary))
	fmt.Fprintf(b, "[%s](%s)\n\n", readMoreLabel, a.URL)
	b.WriteString("---\n\n")
}

// markdownEscaper backslash-escapes characters that open inline markup,
// links or raw HTML.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"!", `\!`,
)

// inline makes feed or LLM text safe to place on one Markdown line: it is
// flattened, escaped, and cannot start a list or a setext underline.
func inline(s string) string {
	s = markdownEscaper.Replace(flatten(s))
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=':
		return `\` + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}

// unescape reverses the backslash escapes written by inline.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(escapable, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

const escapable = "\\`*_[]#<>|!-+=.)"

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// RenderHTML converts the Markdown rendering to a standalone HTML page. Raw
// HTML is dropped and only links with safe schemes are emitted.
func RenderHTML(d *Document) []byte {
	// Smartypants copies tags in the title through, so it is escaped up front.
	var title bytes.Buffer
	html.EscapeHTML(&title, []byte(d.Greeting))

	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage | html.SkipHTML | html.Safelink,
		Title: title.String(),
	})
	return markdown.ToHTML([]byte(RenderMarkdown(d)), mdParser, renderer)
}

// Link is a (title, url) pair recovered from a rendered document.
type Link struct {
	Title string
	URL   string
}

// Section is one "## ..." block of a rendered document.
type Section struct {
	Title string
	Links []Link
}

// Outline is the article structure of a rendered Markdown document.
type Outline struct {
	Highlights []Link
	Sections   []Section
}

// ParseMarkdown reads back the article titles and links of a document produced
// by RenderMarkdown, in order.
func ParseMarkdown(text string) (*Outline, error) {
	out := &Outline{}
	var current *Section
	var pendingTitle string
	inHighlights := false

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "## "):
			title := strings.TrimPrefix(line, "## ")
			inHighlights = title == highlightsTitle
			if inHighlights {
				current = nil
				continue
			}
			title = strings.TrimPrefix(strings.TrimPrefix(title, interestPrefix), countryPrefix)
			out.Sections = append(out.Sections, Section{Title: unescape(title)})
			current = &out.Sections[len(out.Sections)-1]
		case inHighlights && strings.Contains(line, ". **[") && strings.HasSuffix(strings.TrimRight(line, " "), ")**"):
			l, ok := parseHighlight(line)
			if !ok {
				return nil, fmt.Errorf("malformed highlight line %q", line)
			}
			out.Highlights = append(out.Highlights, l)
		case current != nil && strings.HasPrefix(line, "### "):
			pendingTitle = unescape(strings.TrimPrefix(line, "### "))
		case current != nil && strings.HasPrefix(line, "["+readMoreLabel+"]("):
			url := strings.TrimSuffix(strings.TrimPrefix(line, "["+readMoreLabel+"]("), ")")
			current.Links = append(current.Links, Link{Title: pendingTitle, URL: url})
			pendingTitle = ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseHighlight reads `N. **[title](url)**`.
func parseHighlight(line string) (Link, bool) {
	line = strings.TrimRight(line, " ")
	start := strings.Index(line, "**[")
	if start < 0 {
		return Link{}, false
	}
	body := strings.TrimSuffix(line[start+3:], ")**")
	sep := strings.LastIndex(body, "](")
	if sep < 0 {
		return Link{}, false
	}
	return Link{Title: unescape(body[:sep]), URL: body[sep+2:]}, true
}
