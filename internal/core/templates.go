package core

import (
	"bytes"
	"html/template"

	"hrtime.service/internal/core/model"
)

var (
	navbarStatusTmpl = template.Must(template.New("navbar_status").Parse(
		`<div class="checkin_status indicator-pill {{.Color}}" title="{{.Title}}"><span>{{.Label}}</span></div>`))

	worklogHeaderTmpl = template.Must(template.New("worklog_header").Parse(
		`<div class="d-flex justify-between">
    <label id="worklog_section_label" class="{{.Indicator}}">{{.Label}}</label>
    <button class="btn btn-outline-info btn-xs edit-full-form-btn">{{.Button}} &nearr;</button>
</div>`))

	presentCardTmpl = template.Must(template.New("employees_present").Parse(
		`<div class="number-card employees_present">
    <div class="number">{{.Count}}</div>
    <button class="btn btn-xs btn-default show-list">{{.ButtonLabel}}</button>
</div>`))
)

type statusView struct {
	Label string
	Title string
	Color string
}

var statusViews = map[model.State]statusView{
	model.StateIn:      {Label: "Checked in", Title: "Working", Color: "green"},
	model.StateBreak:   {Label: "On break", Title: "Break", Color: "orange"},
	model.StateOut:     {Label: "Checked out", Title: "Not working", Color: "red"},
	model.StateUnknown: {Label: "Unknown", Title: "No check-in status", Color: "gray"},
}

// RenderStatus renders the navbar pill for a check-in state.
func RenderStatus(state model.State) (string, error) {
	view, ok := statusViews[state]
	if !ok {
		view = statusViews[model.StateUnknown]
	}
	return render(navbarStatusTmpl, view)
}

// RenderWorklogHeader renders the label and "full form" button above the worklog text box.
func RenderWorklogHeader(hasWorklogs bool) (string, error) {
	indicator := "not-filled"
	if hasWorklogs {
		indicator = "filled"
	}
	return render(worklogHeaderTmpl, map[string]string{
		"Indicator": indicator,
		"Label":     "Add Worklog",
		"Button":    "Enter complete detail",
	})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
