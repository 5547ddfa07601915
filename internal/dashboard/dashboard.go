// Package dashboard turns per-student exercise progress into renderable rows
// and handles the reload messages the progress view emits.
package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// Row statuses and their style tags.
const (
	StatusOnProgress = "On progress"
	StatusFinished   = "Finished"

	StyleOnProgress = "onprogress-cell"
	StyleFinished   = "finished-cell"
)

// Row is one student's line in the progress table.
type Row struct {
	FullName string
	Username string
	Status   string
	Style    string
}

// Rows transforms the progress tuples of one exercise into display rows, in
// input order. Pure; no network.
func Rows(euis []domain.ExerciseUserInfo) []Row {
	rows := make([]Row, 0, len(euis))
	for _, eui := range euis {
		r := Row{
			FullName: eui.User.FullName(),
			Username: eui.User.Username,
			Status:   StatusOnProgress,
			Style:    StyleOnProgress,
		}
		if eui.Finished {
			r.Status = StatusFinished
			r.Style = StyleFinished
		}
		rows = append(rows, r)
	}
	return rows
}

// ReloadOption is one entry of the reload-interval select.
type ReloadOption struct {
	Seconds int
	Label   string
}

// ReloadOptions are the selectable refresh intervals, "Never" first and
// selected by default.
var ReloadOptions = []ReloadOption{
	{0, "Never"},
	{5, "5 seconds"},
	{30, "30 seconds"},
	{60, "1 minute"},
	{300, "5 minutes"},
}

// Message is what the progress view posts upward: either a reload-interval
// change or a manual reload.
type Message struct {
	Type       string `json:"type"`
	ReloadTime int    `json:"reloadTime,omitempty"`
	Reload     bool   `json:"reload,omitempty"`
}

// Message types.
const (
	MessageChangeReloadTime = "changeReloadTime"
	MessageReload           = "reload"
)

// ParseMessage decodes a view message. Unknown types are an error; the view
// only ever emits the two documented ones.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("dashboard.ParseMessage: %w", err)
	}
	switch msg.Type {
	case MessageChangeReloadTime, MessageReload:
		return msg, nil
	}
	return Message{}, fmt.Errorf("dashboard.ParseMessage: unknown message type %q", msg.Type)
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body>
<button id="button-reload">Reload</button>
<select id="time-reload">
{{- range .Options}}
<option value="{{.Seconds}}"{{if eq .Seconds 0}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
<table>
<tr><th>Full name</th><th>Username</th><th>Exercise status</th></tr>
{{- range .Rows}}
<tr><td>{{.FullName}}</td><td>{{.Username}}</td><td class="{{.Style}}">{{.Status}}</td></tr>
{{- end}}
</table>
<script nonce="{{.Nonce}}" src="dashboard.js"></script>
</body>
</html>
`))

// RenderHTML renders the standalone progress page for an exercise, the same
// table the host webview shows. The script tag carries a fresh nonce.
func RenderHTML(exerciseName string, rows []Row) (string, error) {
	var b strings.Builder
	data := struct {
		Title   string
		Options []ReloadOption
		Rows    []Row
		Nonce   string
	}{
		Title:   "V4T Dashboard: " + exerciseName,
		Options: ReloadOptions,
		Rows:    rows,
		Nonce:   uuid.NewString(),
	}
	if err := pageTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("dashboard.RenderHTML: %w", err)
	}
	return b.String(), nil
}
