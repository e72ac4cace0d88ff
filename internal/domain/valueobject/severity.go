package valueobject

import "strings"

// Severity критичность баг-репорта.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Priority производный приоритет заявки.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// severityToPriority фиксированный порядок старшинства: CRITICAL > HIGH > MEDIUM > LOW.
var severityToPriority = map[Severity]Priority{
	SeverityCritical: PriorityUrgent,
	SeverityHigh:     PriorityHigh,
	SeverityMedium:   PriorityMedium,
	SeverityLow:      PriorityLow,
}

// severityRank чем меньше, тем критичнее.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// ParseSeverity нормализует строку критичности. Неизвестные значения считаются MEDIUM.
func ParseSeverity(raw string) Severity {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := severityRank[s]; ok {
		return s
	}
	return SeverityMedium
}

// Priority возвращает приоритет, соответствующий критичности.
func (s Severity) Priority() Priority {
	if p, ok := severityToPriority[s]; ok {
		return p
	}
	return PriorityMedium
}

// MoreSevereThan сообщает, что s критичнее other.
func (s Severity) MoreSevereThan(other Severity) bool {
	return severityRank[s] < severityRank[other]
}
