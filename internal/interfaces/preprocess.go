package interfaces

// TextPreprocessor converts remote markup into readable text. Both operations
// are pure with respect to service state; failures degrade to stripped text
// rather than returning errors.
type TextPreprocessor interface {
	// CleanText processes free text (Jira wiki markup): user mentions and
	// links are resolved, markup is converted to markdown
	CleanText(text string) string

	// ProcessHTML cleans a Confluence storage-format HTML body and converts
	// it to markdown. The space key gives link-resolution context. Returns
	// (cleanedHTML, markdown).
	ProcessHTML(html, spaceKey string) (string, string)
}
