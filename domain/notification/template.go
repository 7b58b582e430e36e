package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting    string
	DatasetName string
	Episodes    int
	Frames      int
	Tasks       int
	ArchiveURL  string
	SenderName  string
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// DefaultTemplate is the standard email template for curated dataset notifications
var DefaultTemplate = EmailTemplate{
	SubjectFormat: "Curated dataset ready: {{.DatasetName}}",
	PlainText: `{{.Greeting}}

The curated dataset "{{.DatasetName}}" is ready for download:
{{.ArchiveURL}}

Episodes: {{.Episodes}}
Frames:   {{.Frames}}
Tasks:    {{.Tasks}}

Thanks!
~{{.SenderName}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
The curated dataset "<a href="{{.ArchiveURL}}">{{.DatasetName}}</a>" is ready for download.<br><br>
Episodes: {{.Episodes}}<br>
Frames: {{.Frames}}<br>
Tasks: {{.Tasks}}<br><br>
Thanks!<br>
~{{.SenderName}}</div>`,
}

// FormatGreeting creates an appropriate greeting based on number of recipients
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		return fmt.Sprintf("Dear %s,", getFirstName(recipients[0].Name))
	case 2:
		return fmt.Sprintf("Dear %s & %s,", getFirstName(recipients[0].Name), getFirstName(recipients[1].Name))
	default:
		return "Hey Everyone!"
	}
}

// getFirstName extracts the first name from a full name
func getFirstName(fullName string) string {
	if fullName == "" {
		return "Friend"
	}
	for i, c := range fullName {
		if c == ' ' {
			return fullName[:i]
		}
	}
	return fullName
}

// Render renders the subject, plain-text body and HTML body for the request
func (t EmailTemplate) Render(data TemplateData) (subject, plain, html string, err error) {
	subject, err = renderTemplate("subject", t.SubjectFormat, data)
	if err != nil {
		return "", "", "", err
	}
	plain, err = renderTemplate("plain", t.PlainText, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderTemplate("html", t.HTML, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, plain, html, nil
}

func renderTemplate(name, text string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}
