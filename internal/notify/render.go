package notify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tunga-io/tunga/internal/model"
)

const (
	ReminderSubject    = "Please Send Us An Update On Your Task"
	TaskUpdateSubject  = "New Task Update"
	ApplicationSubject = "New Task Application"
)

var md = goldmark.New()

// Markdown renders a markdown body to HTML, falling back to an empty
// alternative on failure.
func Markdown(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func withPrefix(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}

// UpdateURL links to the page where an update for milestone m is submitted.
func UpdateURL(base string, m *model.Milestone) string {
	return fmt.Sprintf("%s/task/%d/%d", strings.TrimRight(base, "/"), m.TaskID, m.ID)
}

func build(to *model.User, subject, body string) Message {
	return Message{
		To:      []string{to.Email},
		Subject: subject,
		Text:    body,
		HTML:    Markdown(body),
	}
}

// ReminderMessage asks the owner of task for an update on milestone m.
func ReminderMessage(prefix string, owner *model.User, task *model.Task, m *model.Milestone, url string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.ShortName())
	fmt.Fprintf(&b, "Milestone **%s** of your task **%s** is due", m.Title, task.Title)
	if m.DueDate != nil {
		fmt.Fprintf(&b, " (%s)", m.DueDate.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Please send us an update: [%s](%s)\n\n", url, url)
	b.WriteString("The Tunga team\n")
	return build(owner, withPrefix(prefix, ReminderSubject), b.String())
}

// TaskUpdateMessage tells the owner of task that a report was submitted.
func TaskUpdateMessage(prefix string, owner, reporter *model.User, task *model.Task, u *model.TaskUpdate, url string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.ShortName())
	fmt.Fprintf(&b, "%s posted an update on **%s**.\n\n", reporter.ShortName(), task.Title)
	fmt.Fprintf(&b, "- Status: %s\n", u.Status)
	if u.PercentageDone != nil {
		fmt.Fprintf(&b, "- Progress: %d%%\n", *u.PercentageDone)
	}
	if u.Accomplished != "" {
		fmt.Fprintf(&b, "- Accomplished: %s\n", u.Accomplished)
	}
	if u.NextSteps != "" {
		fmt.Fprintf(&b, "- Next steps: %s\n", u.NextSteps)
	}
	if u.OtherRemarks != "" {
		fmt.Fprintf(&b, "- Remarks: %s\n", u.OtherRemarks)
	}
	fmt.Fprintf(&b, "\n[View the task](%s)\n", url)
	return build(owner, withPrefix(prefix, TaskUpdateSubject), b.String())
}

// ApplicationMessage tells the owner of task that applicant wants to work on it.
func ApplicationMessage(prefix string, owner, applicant *model.User, task *model.Task, a *model.Application, url string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.ShortName())
	fmt.Fprintf(&b, "%s applied to work on **%s**.\n\n", applicant.ShortName(), task.Title)
	if a.HoursNeeded != nil {
		fmt.Fprintf(&b, "- Hours needed: %d\n", *a.HoursNeeded)
	}
	if a.HoursAvailable != nil {
		fmt.Fprintf(&b, "- Hours available per week: %d\n", *a.HoursAvailable)
	}
	if a.DeliverAt != nil {
		fmt.Fprintf(&b, "- Can deliver by: %s\n", a.DeliverAt.UTC().Format("2006-01-02"))
	}
	if a.Pitch != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Pitch)
	}
	fmt.Fprintf(&b, "\n[Review the applications](%s)\n", url)
	return build(owner, withPrefix(prefix, ApplicationSubject), b.String())
}
