package wall

import (
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/dtroode/postit-wall/internal/model"
)

const cardsTemplate = `{{range .}}<div class="postit" data-id="{{.ID}}">
<button class="del" data-id="{{.ID}}" title="Delete">&#10060;</button>
<h3 contenteditable="true" class="editable" data-id="{{.ID}}" data-field="title">{{esc .Title}}</h3>
<p contenteditable="true" class="editable" data-id="{{.ID}}" data-field="body">{{esc .Body}}</p>
<small>{{esc .Date}}</small>
</div>
{{end}}`

// Renderer turns a snapshot into the markup of the whole wall.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	tmpl := template.Must(template.New("cards").
		Funcs(template.FuncMap{"esc": html.EscapeString}).
		Parse(cardsTemplate))

	return &Renderer{tmpl: tmpl}
}

// Render returns one card per note, in the given order.
// Note text is escaped for & < > " and ' only.
func (r *Renderer) Render(notes []model.Note) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, notes); err != nil {
		return "", fmt.Errorf("failed to render wall: %w", err)
	}
	return sb.String(), nil
}
