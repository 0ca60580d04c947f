package verify

// Check names as they appear in verification reports. The report always
// lists results in the order of checkOrder, so consumers can index by
// position or by name.
const (
	CheckNameScope              = "scope"
	CheckNameDisclaimer         = "disclaimer"
	CheckNameNumericConsistency = "numeric_consistency"
	CheckNameConfidence         = "confidence"
	CheckNameTickerVerification = "ticker_verification"
)

// CheckResult records the outcome of a single verification check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Outcome is the result of running the verification layer on a response.
// Response is the (possibly amended) final text; Amended is true iff any
// check appended text to it.
type Outcome struct {
	Response string        `json:"response"`
	Checks   []CheckResult `json:"checks"`
	Amended  bool          `json:"amended"`
}

// Check returns the result with the given name, or a zero CheckResult.
func (o Outcome) Check(name string) CheckResult {
	for _, c := range o.Checks {
		if c.Name == name {
			return c
		}
	}
	return CheckResult{}
}
