package service

import "strings"

// Priority is a task priority. The set is closed; see ParsePriority.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// Priorities lists every priority from least to most severe.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical}

// ParsePriority normalises s to a Priority.
// Empty or unrecognised values are medium.
func ParsePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return PriorityMedium
}

// IsPriority reports whether s names a priority exactly (case-insensitive).
func IsPriority(s string) bool {
	return Priority(strings.ToLower(strings.TrimSpace(s))).Valid()
}

// Valid reports whether p is a member of the closed set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities by severity, low = 0. Invalid values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	case PriorityCritical:
		return 4
	}
	return 1
}

func (p Priority) String() string { return string(p) }
