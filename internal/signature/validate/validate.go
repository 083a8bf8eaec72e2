// Package validate applies the field checks a signature must pass at each
// lifecycle point. Unconditional checks run on create and update; the
// policy-gated checks run on update only, so signing stays low-friction and
// full profile completion is deferred to confirmation time.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"petities/internal/petition/policy"
	"petities/internal/signature/models"
	"petities/pkg/email"
)

// Phase is the lifecycle point a validation run applies to.
type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseUpdate Phase = "update"
)

// namePattern requires two non-empty segments separated by a space or period,
// rejecting single-token names.
var namePattern = regexp.MustCompile(`^.+[ .].+$`)

// Rule checks one aspect of a signature and records failures. Rules never
// short-circuit; every active rule runs so the caller gets the full set of
// violations at once.
type Rule func(sig *models.Signature, pol policy.Policy, now time.Time, v models.Violations)

// Run normalizes the signature in place and evaluates all rules active for the
// phase. An empty Violations result means valid. Email uniqueness is a store
// concern and is checked by the service, not here.
func Run(sig *models.Signature, pol policy.Policy, phase Phase, now time.Time) models.Violations {
	sig.Normalize()

	v := models.Violations{}
	for _, rule := range unconditionalRules {
		rule(sig, pol, now, v)
	}
	if phase == PhaseUpdate {
		for _, rule := range updateRules {
			rule(sig, pol, now, v)
		}
	}
	return v
}

var unconditionalRules = []Rule{
	checkName,
	checkEmail,
	checkFunction,
}

var updateRules = []Rule{
	checkFullAddress,
	checkBornAt,
	checkMinimumAge,
	checkBirthCity,
}

func checkName(sig *models.Signature, _ policy.Policy, _ time.Time, v models.Violations) {
	if !lengthIn(sig.Name, 3, 255) {
		v.Add("name", "must be between 3 and 255 characters")
	}
	if !namePattern.MatchString(sig.Name) {
		v.Add("name", "must contain a first and last name separated by a space or period")
	}
}

func checkEmail(sig *models.Signature, _ policy.Policy, _ time.Time, v models.Violations) {
	if !email.Valid(sig.Email) {
		v.Add("email", "is not a valid email address")
	}
}

func checkFunction(sig *models.Signature, _ policy.Policy, _ time.Time, v models.Violations) {
	if sig.Function != "" && !lengthIn(sig.Function, 0, 255) {
		v.Add("function", "must be at most 255 characters")
	}
}

func checkFullAddress(sig *models.Signature, pol policy.Policy, _ time.Time, v models.Violations) {
	if !pol.RequiresFullAddress() {
		return
	}
	if !lengthIn(sig.City, 3, 255) {
		v.Add("city", "must be between 3 and 255 characters")
	}
	if !lengthIn(sig.Street, 3, 255) {
		v.Add("street", "must be between 3 and 255 characters")
	}
	if _, err := strconv.Atoi(sig.StreetNumber); err != nil {
		v.Add("streetNumber", "must be an integer")
	}
	if sig.StreetNumberSuffix != "" && !lengthIn(sig.StreetNumberSuffix, 1, 255) {
		v.Add("streetNumberSuffix", "must be between 1 and 255 characters")
	}
}

func checkBornAt(sig *models.Signature, pol policy.Policy, _ time.Time, v models.Violations) {
	// A minimum-age requirement carries its own, more specific message.
	if _, hasAge := pol.RequiresMinimumAge(); hasAge {
		return
	}
	if pol.RequiresBornAt() && sig.BirthDate == nil {
		v.Add("birthDate", "is required")
	}
}

func checkMinimumAge(sig *models.Signature, pol policy.Policy, now time.Time, v models.Violations) {
	age, ok := pol.RequiresMinimumAge()
	if !ok {
		return
	}
	if sig.BirthDate == nil {
		v.Add("birthDate", fmt.Sprintf("is required; signers must be at least %d years old", age))
		return
	}
	// Born on or before (today - age years).
	latest := now.AddDate(-age, 0, 0)
	if sig.BirthDate.After(latest) {
		v.Add("birthDate", fmt.Sprintf("signer must be at least %d years old", age))
	}
}

func checkBirthCity(sig *models.Signature, pol policy.Policy, _ time.Time, v models.Violations) {
	if !pol.RequiresBirthCity() {
		return
	}
	if !lengthIn(sig.BirthCity, 3, 255) {
		v.Add("birthCity", "must be between 3 and 255 characters")
	}
}

func lengthIn(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}
