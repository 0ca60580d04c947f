package verify

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DisclaimerText is the fixed sentence appended when a required disclaimer
// is missing.
const DisclaimerText = "\n\n*This is for informational purposes only and does " +
	"not constitute financial advice.*"

// Layer runs all verification checks on an agent response and conditionally
// amends it before it reaches the user. Amendment is strictly append-only;
// a failing check never removes or edits content.
type Layer struct {
	log *logrus.Entry
}

// NewLayer creates a verification layer logging through the given logger.
func NewLayer(log *logrus.Logger) *Layer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Layer{log: log.WithField("component", "verification")}
}

// layerCheck is one entry in the fixed check pipeline. A non-empty amend
// string is appended to the response when the check fails; checks with an
// empty amend are informational only.
type layerCheck struct {
	name string
	run  func() (passed bool, detail, amend string)
}

// Verify runs the check pipeline in its fixed order and returns the
// (possibly amended) response with per-check outcomes. A panic inside any
// check is caught, logged, and recorded as a passing result: verification
// is advisory and must never block a response from being delivered.
func (l *Layer) Verify(response string, toolsUsed, toolOutputs []string) Outcome {
	// The check order is significant: reports list results in this order,
	// and the ticker placeholder documents upstream enforcement.
	pipeline := []layerCheck{
		{CheckNameScope, func() (bool, string, string) {
			passed, detail := CheckScope(response, toolsUsed)
			return passed, detail, ""
		}},
		{CheckNameDisclaimer, func() (bool, string, string) {
			passed, detail := CheckDisclaimer(response, toolsUsed)
			return passed, detail, DisclaimerText
		}},
		{CheckNameNumericConsistency, func() (bool, string, string) {
			passed, detail := CheckNumericConsistency(response, toolOutputs)
			return passed, detail, ""
		}},
		{CheckNameConfidence, func() (bool, string, string) {
			score, detail := ScoreConfidence(response, toolsUsed, toolOutputs)
			return score >= LowConfidenceThreshold, detail, LowConfidenceCaveat
		}},
		// Ticker verification is enforced at order-creation time; recorded
		// here so the report's check list stays complete without a second
		// round of backend calls.
		{CheckNameTickerVerification, func() (bool, string, string) {
			return true, "Enforced at tool-call time", ""
		}},
	}

	outcome := Outcome{
		Response: response,
		Checks:   make([]CheckResult, 0, len(pipeline)),
	}

	for _, check := range pipeline {
		result, amend := l.runSafe(check)
		outcome.Checks = append(outcome.Checks, result)
		if result.Passed {
			continue
		}

		if amend == "" {
			l.log.WithField("check", check.name).Warnf("check failed: %s", result.Detail)
			continue
		}
		outcome.Response += amend
		outcome.Amended = true
		l.log.WithField("check", check.name).Infof("response amended: %s", result.Detail)
	}

	return outcome
}

// runSafe executes a check once, converting a panic into a passing
// placeholder result so a bug in one check cannot crash the response path.
func (l *Layer) runSafe(check layerCheck) (result CheckResult, amend string) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("check", check.name).Errorf("check panicked: %v", r)
			result = CheckResult{
				Name:   check.name,
				Passed: true,
				Detail: fmt.Sprintf("Check error: %v", r),
			}
			amend = ""
		}
	}()

	passed, detail, amendText := check.run()
	return CheckResult{Name: check.name, Passed: passed, Detail: detail}, amendText
}
