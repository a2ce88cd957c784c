// -----------------------------------------------------------------------
// Preprocessor - converts Atlassian markup into readable text
// Confluence storage HTML -> (cleaned HTML, markdown), Jira wiki -> markdown
// -----------------------------------------------------------------------

package preprocess

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

var (
	userMentionRe = regexp.MustCompile(`\[~(?:accountid:)?([^\]]+)\]`)
	smartLinkRe   = regexp.MustCompile(`\[([^|\]]+)\|([^\]]+)\]`)
	bareLinkRe    = regexp.MustCompile(`\[(https?://[^\]]+)\]`)
	codeBlockRe   = regexp.MustCompile(`\{code(?::[^}]*)?\}`)
	noformatRe    = regexp.MustCompile(`\{noformat\}`)
	headingRe     = regexp.MustCompile(`(?m)^h([1-6])\.\s+`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// Preprocessor implements interfaces.TextPreprocessor for both services
type Preprocessor struct {
	baseURL string
	logger  arbor.ILogger
}

// New creates a preprocessor resolving relative links against baseURL
func New(baseURL string, logger arbor.ILogger) *Preprocessor {
	return &Preprocessor{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// CleanText processes Jira free text: user mentions become @-handles, smart
// links become markdown links, and wiki markup is converted to markdown.
func (p *Preprocessor) CleanText(text string) string {
	if text == "" {
		return ""
	}

	cleaned := userMentionRe.ReplaceAllString(text, "@$1")
	cleaned = smartLinkRe.ReplaceAllString(cleaned, "[$1]($2)")
	cleaned = bareLinkRe.ReplaceAllString(cleaned, "$1")
	cleaned = codeBlockRe.ReplaceAllString(cleaned, "```")
	cleaned = noformatRe.ReplaceAllString(cleaned, "```")
	cleaned = headingRe.ReplaceAllStringFunc(cleaned, func(match string) string {
		level := int(match[1] - '0')
		return strings.Repeat("#", level) + " "
	})
	cleaned = strings.ReplaceAll(cleaned, "{quote}", "> ")

	return strings.TrimSpace(cleaned)
}

// ProcessHTML cleans a Confluence storage-format body and converts it to
// markdown. Structured macros are unwrapped, user-mention elements are
// resolved to display names, and relative links are made absolute against
// the space's wiki URL. Conversion failures fall back to tag stripping.
func (p *Preprocessor) ProcessHTML(htmlContent, spaceKey string) (string, string) {
	if htmlContent == "" {
		return "", ""
	}

	cleaned := p.cleanHTML(htmlContent, spaceKey)
	markdown := p.htmlToMarkdown(cleaned)

	return cleaned, markdown
}

func (p *Preprocessor) cleanHTML(htmlContent, spaceKey string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to parse HTML content, stripping tags")
		return StripHTMLTags(htmlContent)
	}

	doc.Find("script, style").Remove()

	// Confluence user mentions: <ri:user ri:account-id="..."/> inside ac:link
	doc.Find("ri\\:user").Each(func(_ int, s *goquery.Selection) {
		accountID, _ := s.Attr("ri:account-id")
		if accountID == "" {
			accountID, _ = s.Attr("ri:userkey")
		}
		s.ReplaceWithHtml(fmt.Sprintf("@%s", accountID))
	})

	// Unwrap structured macros so their bodies survive conversion
	doc.Find("ac\\:structured-macro").Each(func(_ int, s *goquery.Selection) {
		body := s.Find("ac\\:rich-text-body, ac\\:plain-text-body")
		if body.Length() > 0 {
			inner, err := body.Html()
			if err == nil {
				s.ReplaceWithHtml(inner)
			}
		} else {
			s.Remove()
		}
	})

	// Make relative links absolute within the space's wiki
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			s.SetAttr("href", p.baseURL+"/wiki"+ensureLeadingSlash(href))
		}
	})
	_ = spaceKey // link context is carried by baseURL; space-relative paths already include the space

	cleaned, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(cleaned) == "" {
		cleaned, err = doc.Html()
		if err != nil {
			return StripHTMLTags(htmlContent)
		}
	}

	return strings.TrimSpace(cleaned)
}

func (p *Preprocessor) htmlToMarkdown(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	converter := md.NewConverter(p.baseURL, true, nil)
	converted, err := converter.ConvertString(htmlContent)
	if err != nil {
		p.logger.Warn().Err(err).Str("fallback", "StripHTMLTags").Msg("HTML to markdown conversion failed, using fallback")
		return StripHTMLTags(htmlContent)
	}

	trimmed := strings.TrimSpace(converted)
	if trimmed == "" {
		// Empty output despite non-empty HTML, fall back to stripping
		return StripHTMLTags(htmlContent)
	}

	return trimmed
}

// StripHTMLTags removes HTML tags and collapses whitespace for fallback cases
func StripHTMLTags(htmlStr string) string {
	stripped := tagRe.ReplaceAllString(htmlStr, "")
	cleaned := spaceRe.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
