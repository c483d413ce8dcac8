package matcher

import "strings"

// trueValues and falseValues are the judgement-text synonym lists,
// ported from adapter/wanneng.py::_parse_judgement. The spec (§9 Open
// Questions) flags this list as ad hoc and empirically tuned; it's kept
// as package vars rather than constants so a deployment can extend it
// for additional locales without forking the matcher.
var (
	trueValues  = []string{"正确", "对", "是", "√", "✓", "t", "true", "yes", "1"}
	falseValues = []string{"错误", "错", "否", "×", "✗", "f", "false", "no", "0"}
)

// ParseJudgement maps free text to a boolean true/false verdict. It
// checks the true-synonym list first, then the false-synonym list, and
// defaults to true when neither list matches — mirroring the original
// adapter's behavior of never failing a judgement parse outright.
func ParseJudgement(answer string) bool {
	lower := strings.ToLower(strings.TrimSpace(answer))

	for _, v := range trueValues {
		if strings.Contains(lower, v) {
			return true
		}
	}
	for _, v := range falseValues {
		if strings.Contains(lower, v) {
			return false
		}
	}
	return true
}

// JudgementText renders a judgement verdict into the literal Chinese
// strings the aggregator's bestAnswer uses (§4.6).
func JudgementText(v bool) string {
	if v {
		return "对"
	}
	return "错"
}
