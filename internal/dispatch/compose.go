package dispatch

// #region imports
import "fmt"

// #endregion

// #region compose

const (
	docSectionHeader  = "Доступная информация из документов:"
	noDocsPlaceholder = "Документы пока не загружены"
)

// ComposeSystem appends the retrieved document section to the tenant's
// system prompt template. When the gate rejected the context (or it is
// empty), the section carries an explicit placeholder instead of the
// rejected text, so the model never sees context that failed the gate.
func ComposeSystem(template, context string, ok bool) string {
	final := noDocsPlaceholder
	if ok && context != "" {
		final = context
	}
	return fmt.Sprintf("%s\n\n%s\n%s", template, docSectionHeader, final)
}

// #endregion compose
