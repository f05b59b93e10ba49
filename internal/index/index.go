// ABOUTME: Fallback HTML page listing every registered endpoint
// ABOUTME: Served whenever a request does not match a route; rebuilt on every request

package index

import (
	"bytes"
	"html/template"

	"github.com/harper/netcmd/internal/endpoint"
	"github.com/harper/netcmd/internal/logger"
)

// DefaultTitle heads the page when no title is configured.
const DefaultTitle = "Device Api List"

var log = logger.Tagged("index")

const stylesheet = `
body {
    background: #A67000;
}

ul {
    list-style-type: circle;
    font-size: 20px;
}

#container {
    margin: 0 auto;
    width: 600px;
    height: 100%;
}

.description {
    font-size: 12px;
    padding: 10px;
}

#main {
    background: #FFAD00;
    height: 100%;
    padding: 5px;
    border-bottom-left-radius: 15px;
    border-bottom-right-radius: 15px;
}

#title {
    background: #ffd273;
    font-size: 50px;
    font-variant: small-caps;
    margin: 0;
    text-align: center;
    padding: 20px;
    border-top-left-radius: 15px;
    border-top-right-radius: 15px;
}

a:link, a:visited, a:active { color: black; }
a:hover { color: white; }
a {
    text-decoration: underline;
    font-variant: small-caps;
}
`

var page = template.Must(template.New("index").Parse(`<html>
<head>
<style type="text/css">{{.Style}}</style>
</head>
<body>
<div id="container">
    <div id="title">{{.Title}}</div>
    <div id="main">
        <ul>
{{- range .Endpoints}}
            <li><a href="/{{.Name}}">{{.Name}}</a><span class="description">({{.Description}}){{if .ManualSocket}} (stream){{end}}</span></li>
{{- end}}
        </ul>
    </div>
</div>
</body>
</html>
`))

type pageData struct {
	Title     string
	Style     template.CSS
	Endpoints []endpoint.Endpoint
}

// Render returns the listing page for endpoints, or "" if rendering fails.
func Render(title string, endpoints []endpoint.Endpoint) string {
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title:     title,
		Style:     template.CSS(stylesheet),
		Endpoints: endpoints,
	})
	if err != nil {
		log.Warn("render index page: %v", err)
		return ""
	}
	return buf.String()
}
