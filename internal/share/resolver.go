package share

import (
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/model"
)

const (
	MetaType     = "payment"
	MetaLanguage = "EN"
	PlatformRole = "owner"
)

// Source looks up the revenue-split script published for a URL. A nil
// document with a nil error means no script.
type Source interface {
	Script(ctx context.Context, url string) (map[string]interface{}, error)
}

type Meta struct {
	Type         string   `json:"type"`
	Language     string   `json:"language"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	Participants []Entry  `json:"participants"`
}

type Payment struct {
	TaskURL  string `json:"task_url"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Resolver builds the participation meta of a task.
type Resolver struct {
	PlatformEmail      string
	PlatformPercentage int
	Source             Source
}

func NewResolver(c conf.Share, src Source) *Resolver {
	return &Resolver{
		PlatformEmail:      c.PlatformEmail,
		PlatformPercentage: c.PlatformPercentage,
		Source:             src,
	}
}

func mailto(email string) string {
	return "mailto:" + email
}

func (r *Resolver) platform() Entry {
	return Entry{ID: mailto(r.PlatformEmail), Role: PlatformRole, Share: r.PlatformPercentage}
}

// Default is the meta of a task without a script and without participants.
func (r *Resolver) Default(task *model.Task) Meta {
	description := task.Excerpt()
	if description == "" {
		description = task.Summary()
	}
	keywords := append([]string{}, conf.DefaultKeywords...)
	keywords = append(keywords, task.SkillList()...)
	return Meta{
		Type:         MetaType,
		Language:     MetaLanguage,
		Title:        task.Summary(),
		Description:  description,
		Keywords:     keywords,
		Participants: []Entry{r.platform()},
	}
}

// Resolve merges the task's script over the default meta. Accepted
// participants share the rest evenly when the script contributes nobody.
func (r *Resolver) Resolve(ctx context.Context, task *model.Task, accepted []model.Participation) Meta {
	meta := r.Default(task)
	script := r.lookup(ctx, task)
	appended := 0
	if script != nil {
		for k, v := range script.Fields {
			switch k {
			case "type":
				meta.Type = v
			case "language":
				meta.Language = v
			case "title":
				meta.Title = v
			case "description":
				meta.Description = v
			}
		}
		meta.Keywords = append(meta.Keywords, script.Keywords...)
		entries := Split(script.Participants)
		meta.Participants = append(meta.Participants, entries...)
		appended = len(entries)
	}
	if appended == 0 {
		meta.Participants = append(meta.Participants, Even(r.PlatformPercentage, accepted)...)
	}
	return meta
}

func (r *Resolver) lookup(ctx context.Context, task *model.Task) *Script {
	if r.Source == nil || strings.TrimSpace(task.URL) == "" {
		return nil
	}
	raw, err := r.Source.Script(ctx, task.URL)
	if err != nil {
		log.Warnf("task %d: script lookup for %s failed: %+v", task.ID, task.URL, err)
		return nil
	}
	if raw == nil {
		return nil
	}
	return ParseScript(raw)
}

// Even splits what the platform leaves equally over the accepted
// participants, lowest stored share first.
func Even(percentage int, accepted []model.Participation) []Entry {
	n := len(accepted)
	if n == 0 {
		return nil
	}
	sorted := append([]model.Participation{}, accepted...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Share, sorted[j].Share
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a < *b
		}
		return sorted[i].ID < sorted[j].ID
	})
	each := (100 - percentage) / n
	res := make([]Entry, 0, n)
	for _, p := range sorted {
		email := ""
		if p.User != nil {
			email = p.User.Email
		}
		res = append(res, Entry{ID: mailto(email), Role: p.Role, Share: each})
	}
	return res
}

// Payment describes what paying out the task involves.
func (r *Resolver) Payment(task *model.Task, base string) Payment {
	return Payment{
		TaskURL:  fmt.Sprintf("%s/task/%d/", strings.TrimRight(base, "/"), task.ID),
		Amount:   task.Fee,
		Currency: task.Currency,
	}
}
