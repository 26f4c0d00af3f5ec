package viewer

import (
	"html/template"
	"net/http"
	"net/url"
)

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>metaextract</title>
</head>
<body>
<h1>Graphs</h1>
<ul>
{{- range .Graphs }}
<li><a href="/api/v1/graphs/{{ pathEscape . }}">{{ . }}</a></li>
{{- else }}
<li>No graphs have been generated yet.</li>
{{- end }}
</ul>
<h1>Classes</h1>
<ul>
{{- range .Classes }}
<li><a href="/api/v1/classes/{{ pathEscape . }}">{{ . }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

type htmlIndexContext struct {
	Graphs  []string
	Classes []string
}

func (viewer *Viewer) htmlIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	err := indexTemplate.Execute(w, htmlIndexContext{
		Graphs:  viewer.getGraphNames(),
		Classes: viewer.getClassLabels(),
	})
	if err != nil {
		viewer.Status.LogError("render index", err)
	}
}
