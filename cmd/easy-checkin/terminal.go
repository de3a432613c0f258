package main

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"hrtime.service/internal/core"
	"hrtime.service/internal/core/model"
	"hrtime.service/internal/dashboard"
	"hrtime.service/internal/dialog"
)

var strict = bluemonday.StrictPolicy()

// terminal reads answers from in and prints the dialog, notifications and
// widgets to out.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminal(in *bufio.Reader, out io.Writer) *terminal {
	return &terminal{in: in, out: out}
}

func (t *terminal) println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

// ask prints label and returns the trimmed line typed in.
func (t *terminal) ask(label string) (string, error) {
	fmt.Fprint(t.out, label+": ")
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Notify implements dialog.Notifier.
func (t *terminal) Notify(n dialog.Notification) {
	fmt.Fprintf(t.out, "[%s] %s\n", n.Indicator, n.Message)
}

func (t *terminal) printOptions(view dialog.View) {
	t.println("Check-in for employee", view.EmployeeID)
	for i, o := range view.Options {
		marker := " "
		if o == view.Selected {
			marker = "*"
		}
		fmt.Fprintf(t.out, " %s %d) %s\n", marker, i+1, o)
	}
}

func (t *terminal) printWorklogSection(view dialog.View) {
	if view.HasWorklogs {
		t.println("Worklog (optional, you already logged work today):")
		return
	}
	t.println("Worklog (required, no worklog today yet):")
}

func (t *terminal) printWidgets(w dashboard.Widgets) {
	status := plainText(w.NavbarStatus)
	if status == "" {
		status = "-"
	}
	present := "-"
	if fields := strings.Fields(plainText(w.PresentCard)); len(fields) > 0 {
		present = fields[0]
	}
	fmt.Fprintf(t.out, "Status: %s | Employees present: %s\n", status, present)
}

func (t *terminal) printPresent(rows []model.PresentEmployee) {
	if len(rows) == 0 {
		t.println("Nobody is present.")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(t.out, "%-24s %-6s since %s (started %s)\n",
			r.EmployeeName, r.Status, core.FormatTimeAmPm(r.StatusSince.Local()), core.FormatTimeAmPm(r.WorkStartToday.Local()))
	}
}

// plainText turns an HTML fragment into a single line of text.
func plainText(fragment string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(fragment))), " ")
}
