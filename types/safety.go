package types

import "strings"

// SafetyStatus 安全门给出的判定，按严重程度全序。
type SafetyStatus string

const (
	SafetySafe          SafetyStatus = "SAFE"
	SafetyNeedsHelp     SafetyStatus = "NEEDS_HELP"
	SafetyDangerous     SafetyStatus = "DANGEROUS"
	SafetyInappropriate SafetyStatus = "INAPPROPRIATE"
)

var safetySeverity = map[SafetyStatus]int{
	SafetySafe:          0,
	SafetyNeedsHelp:     1,
	SafetyDangerous:     2,
	SafetyInappropriate: 3,
}

// ParseSafetyStatus 大小写不敏感地解析状态。
// 无法识别的值（含空串）按 SAFE 处理，即 fail-open。
func ParseSafetyStatus(s string) SafetyStatus {
	st, ok := LookupSafetyStatus(s)
	if !ok {
		return SafetySafe
	}
	return st
}

// LookupSafetyStatus 解析状态并报告是否为已知值。
func LookupSafetyStatus(s string) (SafetyStatus, bool) {
	st := SafetyStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := safetySeverity[st]; !ok {
		return "", false
	}
	return st, true
}

// Severity 返回严重程度，未知状态视同 SAFE。
func (s SafetyStatus) Severity() int {
	return safetySeverity[s]
}

// Blocking 非 SAFE 即阻断。
func (s SafetyStatus) Blocking() bool {
	return s.Severity() > 0
}

func (s SafetyStatus) String() string { return string(s) }
