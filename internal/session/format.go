// ABOUTME: Markdown snippets the editor can append to note content.

package session

// Style names an insertable formatting snippet.
type Style string

const (
	Bold          Style = "bold"
	Italic        Style = "italic"
	Underline     Style = "underline"
	Strikethrough Style = "strikethrough"
	List          Style = "list"
	Checklist     Style = "checklist"
)

var snippets = map[Style]string{
	Bold:          "**bold text**",
	Italic:        "_italic text_",
	Underline:     "__underlined text__",
	Strikethrough: "~~strikethrough text~~",
	List:          "\n- List item",
	Checklist:     "\n[ ] Checklist item",
}

// Styles lists the supported styles in menu order.
func Styles() []Style {
	return []Style{Bold, Italic, Underline, Strikethrough, List, Checklist}
}
