// Package email renders digest emails and delivers them.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"signalhound/internal/core"
)

// Group is one competitor's slice of a digest.
type Group struct {
	CompetitorName string
	Signals        []core.Signal
}

// DigestData contains everything needed to render one digest email.
type DigestData struct {
	Date   time.Time
	Groups []Group
}

// TotalSignals counts the signals across all groups.
func (d DigestData) TotalSignals() int {
	total := 0
	for _, group := range d.Groups {
		total += len(group.Signals)
	}
	return total
}

// Template configures the digest email's visual style.
type Template struct {
	Name            string
	HeaderColor     string
	BackgroundColor string
	TextColor       string
	LinkColor       string
	BorderColor     string
	MaxWidth        string
	FontFamily      string
}

// DefaultTemplate returns the standard digest styling.
func DefaultTemplate() *Template {
	return &Template{
		Name:            "default",
		HeaderColor:     "#667eea",
		BackgroundColor: "#f8f9fa",
		TextColor:       "#333333",
		LinkColor:       "#667eea",
		BorderColor:     "#e0e0e0",
		MaxWidth:        "600px",
		FontFamily:      "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif",
	}
}

// Subject builds the digest subject line for the given signal count.
func Subject(totalSignals int) string {
	plural := "s"
	if totalSignals == 1 {
		plural = ""
	}
	return fmt.Sprintf("Competitor Intelligence Digest - %d New Signal%s", totalSignals, plural)
}

const digestTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: {{.Style.FontFamily}}; line-height: 1.6; color: {{.Style.TextColor}}; max-width: {{.Style.MaxWidth}}; margin: 0 auto; padding: 20px; background: {{.Style.BackgroundColor}}; }
  .container { background: #ffffff; border-radius: 12px; padding: 30px; border: 1px solid {{.Style.BorderColor}}; }
  h1 { color: {{.Style.HeaderColor}}; margin: 0 0 10px 0; }
  .date { color: #666; font-size: 14px; }
  .competitor-section { margin-bottom: 30px; padding: 20px; background: {{.Style.BackgroundColor}}; border-radius: 10px; }
  .competitor-name { color: {{.Style.HeaderColor}}; font-size: 20px; font-weight: 600; margin: 0 0 15px 0; }
  .signal { margin-bottom: 15px; padding: 15px; background: #ffffff; border-radius: 8px; border-left: 4px solid {{.Style.HeaderColor}}; }
  .signal-title { font-weight: 600; margin: 0 0 8px 0; }
  .badge { display: inline-block; padding: 3px 8px; border-radius: 4px; font-size: 11px; font-weight: 600; text-transform: uppercase; margin-left: 6px; }
  .badge-positive { background: #d4edda; color: #155724; }
  .badge-negative { background: #f8d7da; color: #721c24; }
  .badge-neutral { background: #e2e3e5; color: #383d41; }
  .badge-priority { background: #fff3cd; color: #856404; }
  .signal-type { font-size: 12px; color: {{.Style.HeaderColor}}; text-transform: uppercase; font-weight: 600; margin-bottom: 6px; }
  .signal-summary { color: #555; margin: 10px 0; font-size: 14px; }
  .signal-link { color: {{.Style.LinkColor}}; text-decoration: none; font-size: 13px; font-weight: 500; }
  .footer { text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid {{.Style.BorderColor}}; font-size: 12px; color: #666; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Competitor Intelligence Digest</h1>
      <div class="date">{{.Data.Date.Format "Monday, January 2, 2006"}}</div>
    </div>
{{- range .Data.Groups}}
    <div class="competitor-section">
      <h2 class="competitor-name">{{.CompetitorName}}</h2>
{{- range .Signals}}
      <div class="signal">
        <div class="signal-title">{{.Title}}
          {{- if .Sentiment}}<span class="badge badge-{{.Sentiment}}">{{.Sentiment}}</span>{{end}}
          {{- if .IsHighPriority}}<span class="badge badge-priority">High Priority</span>{{end}}
        </div>
        <div class="signal-type">{{typeLabel .SignalType}}</div>
        <div class="signal-summary">{{.Summary}}</div>
        <a href="{{.SourceURL}}" class="signal-link" target="_blank">Read full article &rarr;</a>
      </div>
{{- end}}
    </div>
{{- end}}
    <div class="footer">
      <p>This is an automated digest from your competitor intelligence monitor.</p>
      <p>Log in to your dashboard to manage preferences and view all signals.</p>
    </div>
  </div>
</body>
</html>
`

// Renderer renders digest emails with a fixed visual template.
type Renderer struct {
	tmpl  *template.Template
	style *Template
}

// NewRenderer parses the digest template once. The style defaults when nil.
func NewRenderer(style *Template) (*Renderer, error) {
	if style == nil {
		style = DefaultTemplate()
	}

	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"typeLabel": func(t core.SignalType) string {
			return strings.ReplaceAll(string(t), "_", " ")
		},
	}).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}

	return &Renderer{tmpl: tmpl, style: style}, nil
}

// Render produces the digest HTML for one recipient.
func (r *Renderer) Render(data DigestData) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, struct {
		Style *Template
		Data  DigestData
	}{r.style, data})
	if err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}
