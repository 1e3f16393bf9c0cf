package report

import (
	"crypto/sha256"
	"encoding/base64"
	"html/template"
	"io"
	"strings"

	"github.com/thechriswalker/go-verifier/verifier"
)

const reportStyle = `body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3em .6em;vertical-align:top}.Successful{background:#e6f4ea}.Failed{background:#fce8e6}.Errored{background:#fbe3c4}.Skipped{color:#777}`

var reportTemplate = template.Must(template.New("report").Parse(
	`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <meta http-equiv="Content-Security-Policy" content="default-src 'none'; style-src '{{.StyleIntegrity}}'" />
    <title>Verification report • {{ .Report.Status }}</title>
    <style>{{.Style}}</style>
  </head>
  <body>
    <h1 class="{{ .Report.Status }}">Verification {{ .Report.Status }}</h1>
    <p>Dataset <code>{{ .Report.Fingerprint }}</code>{{ if .Version }}, verifier {{ .Version }}{{ end }}</p>
    <table>
      <thead><tr><th>ID</th><th>Verification</th><th>Category</th><th>Status</th><th>Details</th></tr></thead>
      <tbody>
{{- range .Report.Results }}
        <tr class="{{ .Status }}">
          <td>{{ .ID }}</td><td>{{ .Name }}</td><td>{{ .Category }}</td><td>{{ .Status }}</td>
          <td>{{ if .Cause }}<strong>{{ .Cause }}</strong>{{ end }}{{ if .Findings }}<ul>{{ range .Findings }}<li>{{ . }}</li>{{ end }}</ul>{{ end }}{{ .Reason }}</td>
        </tr>
{{- end }}
      </tbody>
    </table>
  </body>
</html>
`,
))

type page struct {
	Report  *verifier.Report
	Version string
}

func (p *page) Style() template.CSS {
	return template.CSS(reportStyle)
}

// StyleIntegrity is the CSP hash of the inline style
func (p *page) StyleIntegrity() template.HTMLAttr {
	h := sha256.Sum256([]byte(reportStyle))
	return template.HTMLAttr("sha256-" + base64.StdEncoding.EncodeToString(h[:]))
}

// HTML renders a standalone page
func HTML(w io.Writer, rep *verifier.Report) error {
	return reportTemplate.Execute(w, &page{Report: rep, Version: strings.TrimSpace(verifier.Version)})
}
