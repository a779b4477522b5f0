package render

import (
	"html/template"
	"io"
)

// PageView is what the storefront layout needs to draw a page.
type PageView struct {
	Title           string
	MetaDescription string
	Body            template.HTML
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>{{with .MetaDescription}}
<meta name="description" content="{{.}}">{{end}}
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

var notFound = template.Must(template.New("not_found").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Page not found</title></head>
<body><main class="not-found"><h1>404</h1><p>We couldn't find that page.</p><a href="/">Back to the store</a></main></body>
</html>
`))

func WritePage(w io.Writer, v PageView) error {
	return layout.Execute(w, v)
}

func WriteNotFound(w io.Writer) error {
	return notFound.Execute(w, nil)
}
