package triage

import (
	"regexp"

	"triage_server/core/domain"
)

// =============================================================================
// Important-Info Extractor
// =============================================================================

const maxTasks = 5

var (
	// http(s) tokens up to the next whitespace.
	linkRe = regexp.MustCompile(`https?://\S+`)

	// Three accepted date shapes: D/M/Y (or D-M-Y), "Month D, YYYY", and
	// ISO-like YYYY/M/D.
	dateRe = regexp.MustCompile(`\b(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|\w+\s+\d{1,2},?\s+\d{4}|\d{4}[/\-]\d{1,2}[/\-]\d{1,2})\b`)

	// Dollar amounts: $ followed by digits/commas, optional decimals.
	moneyRe = regexp.MustCompile(`\$[\d,]+\.?\d*`)

	// Lines starting with a bullet marker.
	taskRe = regexp.MustCompile(`(?m)^[ \t]*[-*•]\s+.+$`)
)

// ExtractImportantInfo pulls links, dates, money amounts and task-like lines
// out of an email's subject and body. Independent of classification; returns
// empty slices (never nil fields) when nothing matches. Order of first
// appearance is preserved and nothing is deduplicated.
func ExtractImportantInfo(email *domain.EmailRecord) *domain.ImportantInfo {
	info := &domain.ImportantInfo{
		Links: []string{},
		Dates: []string{},
		Money: []string{},
		Tasks: []string{},
	}
	if email == nil {
		return info
	}

	text := email.Subject + " " + email.Body

	if m := linkRe.FindAllString(text, -1); m != nil {
		info.Links = m
	}
	if m := dateRe.FindAllString(text, -1); m != nil {
		info.Dates = m
	}
	if m := moneyRe.FindAllString(text, -1); m != nil {
		info.Money = m
	}
	if m := taskRe.FindAllString(text, maxTasks); m != nil {
		info.Tasks = m
	}

	return info
}
