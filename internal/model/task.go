package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

var CurrencySymbols = map[string]string{
	CurrencyEUR: "€",
	CurrencyUSD: "$",
}

const (
	VisibilityDeveloper = 1
	VisibilityMyTeam    = 2
	VisibilityCustom    = 3
)

const (
	UpdateScheduleHourly = iota + 1
	UpdateScheduleDaily
	UpdateScheduleWeekly
	UpdateScheduleMonthly
	UpdateScheduleQuarterly
	UpdateScheduleAnnually
)

var updateScheduleNames = map[int]string{
	UpdateScheduleHourly:    "Hour",
	UpdateScheduleDaily:     "Day",
	UpdateScheduleWeekly:    "Week",
	UpdateScheduleMonthly:   "Month",
	UpdateScheduleQuarterly: "Quarter",
	UpdateScheduleAnnually:  "Annual",
}

type Task struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	UserID              uint       `json:"user" gorm:"index:idx_task_user_title_fee,unique"`
	User                *User      `json:"-" gorm:"foreignKey:UserID"`
	Title               string     `json:"title" gorm:"size:200;index:idx_task_user_title_fee,unique"`
	Description         string     `json:"description" gorm:"size:1000"`
	URL                 string     `json:"url"`
	Fee                 int64      `json:"fee" gorm:"index:idx_task_user_title_fee,unique"`
	Currency            string     `json:"currency" gorm:"size:5;default:EUR"`
	Deadline            *time.Time `json:"deadline"`
	Skills              string     `json:"skills"`
	Visibility          int        `json:"visibility"`
	UpdateInterval      *uint      `json:"update_interval"`
	UpdateIntervalUnits *int       `json:"update_interval_units"`
	Apply               bool       `json:"apply"`
	Closed              bool       `json:"closed"`
	Paid                bool       `json:"paid"`
	Satisfaction        *int16     `json:"satisfaction"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ApplyClosedAt       *time.Time `json:"apply_closed_at"`
	ClosedAt            *time.Time `json:"closed_at"`
	PaidAt              *time.Time `json:"paid_at"`

	Participation []Participation `json:"participation,omitempty" gorm:"foreignKey:TaskID"`
}

var stripTags = bluemonday.StrictPolicy()

// DisplayFee formats amount (the task fee when nil) with its currency symbol.
func (t *Task) DisplayFee(amount *decimal.Decimal) string {
	value := decimal.NewFromInt(t.Fee)
	if amount != nil {
		value = *amount
	}
	if symbol, ok := CurrencySymbols[t.Currency]; ok {
		return symbol + floatFormat(value)
	}
	return floatFormat(value)
}

// DeveloperFee is the fee left once the platform share is taken.
func (t *Task) DeveloperFee(platformPercentage int) decimal.Decimal {
	cut := decimal.NewFromInt(int64(platformPercentage)).Div(decimal.NewFromInt(100))
	return decimal.NewFromInt(t.Fee).Mul(decimal.NewFromInt(1).Sub(cut))
}

// floatFormat drops the decimals of whole amounts and keeps two otherwise.
func floatFormat(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

func (t *Task) Summary() string {
	return fmt.Sprintf("%s - Fee: %s", t.Title, t.DisplayFee(nil))
}

// Excerpt is the description with markup stripped.
func (t *Task) Excerpt() string {
	return strings.TrimSpace(stripTags.Sanitize(t.Description))
}

func (t *Task) SkillList() []string {
	var res []string
	for _, s := range strings.Split(t.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// UpdateScheduleDisplay renders the reporting interval, e.g. "Every 2 weeks".
func (t *Task) UpdateScheduleDisplay() string {
	if t.UpdateInterval == nil || t.UpdateIntervalUnits == nil || *t.UpdateInterval == 0 {
		return ""
	}
	name, ok := updateScheduleNames[*t.UpdateIntervalUnits]
	if !ok {
		return ""
	}
	if *t.UpdateInterval == 1 && *t.UpdateIntervalUnits == UpdateScheduleDaily {
		return "Daily"
	}
	units := strings.ToLower(name)
	if *t.UpdateInterval == 1 {
		return "Every " + units
	}
	return fmt.Sprintf("Every %d %ss", *t.UpdateInterval, units)
}

func ValidCurrency(c string) bool {
	_, ok := CurrencySymbols[c]
	return ok
}
