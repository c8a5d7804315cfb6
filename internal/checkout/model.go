package checkout

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Address is the shipping address captured during checkout.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a Address) fields() []struct{ name, value string } {
	return []struct{ name, value string }{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
}

// MissingFields lists the required fields that are blank, in form order.
func (a Address) MissingFields() []string {
	var missing []string
	for _, f := range a.fields() {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Validate reports every blank required field and a malformed email.
func (a Address) Validate() error {
	verr := &ValidationError{}
	for _, name := range a.MissingFields() {
		verr.add(name, "is required")
	}
	if email := strings.TrimSpace(a.Email); email != "" && !emailRegex.MatchString(email) {
		verr.add("email", "must be a valid email address")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

type Step string

const (
	// StepCart is the cart page the flow falls back to; it is not part of checkout proper.
	StepCart      Step = "cart"
	StepSummary   Step = "summary"
	StepAddress   Step = "address"
	StepConfirm   Step = "confirm"
	StepSubmitted Step = "submitted"
	StepFailed    Step = "failed"
)

var stepRank = map[Step]int{
	StepCart:      0,
	StepSummary:   1,
	StepAddress:   2,
	StepConfirm:   3,
	StepSubmitted: 4,
	StepFailed:    4,
}

func ParseStep(s string) (Step, error) {
	step := Step(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := stepRank[step]; !ok {
		return "", ErrUnknownStep
	}
	return step, nil
}

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is the message shown to the shopper when a guard redirects.
type Notice struct {
	Severity Severity
	Message  string
}

// Decision is the outcome of a guard. When Allowed is false, Step is the
// redirect target.
type Decision struct {
	Requested Step
	Step      Step
	Allowed   bool
	Notice    *Notice
	// Missing lists blank address fields when Confirm is refused for them.
	Missing []string
}
