// Package inbox builds the user-facing views over classified emails: the
// reply queue, missed and today lists, the low-value bucket and the inbox
// tab assignment.
package inbox

import (
	"strings"

	"triage_server/core/domain"
)

// =============================================================================
// Inbox Tab Detection
// =============================================================================

// Tab indicator tables. Checked in order: social, promotions, updates, forums;
// anything left is primary.
var (
	socialDomains = []string{
		"facebook", "twitter", "linkedin", "instagram", "pinterest",
		"snapchat", "tiktok", "youtube", "reddit", "discord", "slack",
		"facebookmail", "twittermail",
	}
	socialKeywords = []string{
		"followed you", "mentioned you", "tagged you", "shared",
		"commented", "liked", "friend request", "connection request",
		"invite", "joined", "posted",
	}

	promoDomains = []string{
		"shopify", "mailchimp", "constantcontact", "sendgrid",
		"marketing", "promo", "deals", "offers",
	}
	promoKeywords = []string{
		"sale", "discount", "off", "deal", "offer", "coupon",
		"promo", "save", "limited time", "exclusive", "free shipping",
		"buy now", "shop now", "order now",
	}

	updateDomains = []string{
		"noreply", "no-reply", "notifications", "alerts", "updates",
	}
	updateKeywords = []string{
		"receipt", "confirmation", "invoice", "statement",
		"notification", "alert", "update", "reminder", "verify",
		"code", "otp", "security", "password", "account",
	}

	forumDomains = []string{
		"groups.google", "googlegroups", "discourse", "mailman",
	}
	forumKeywords = []string{
		"digest", "forum", "community", "group", "mailing list",
		"discussion", "thread", "reply to", "re:",
	}
)

// DetectTab assigns an email to an inbox tab from its sender, subject and
// category. Pure function, classification may or may not have run; an
// unclassified email still gets a tab from sender and subject alone.
func DetectTab(email *domain.EmailRecord) domain.InboxTab {
	if email == nil {
		return domain.TabPrimary
	}

	from := strings.ToLower(email.From)
	subject := strings.ToLower(email.Subject)

	if anyIn(from, socialDomains) || anyIn(subject, socialKeywords) {
		return domain.TabSocial
	}

	if email.Category == domain.CategoryPromo || email.IsNewsletter ||
		anyIn(from, promoDomains) || anyIn(subject, promoKeywords) {
		return domain.TabPromotions
	}

	if email.Category == domain.CategoryAuthCodes || email.Category == domain.CategoryFinance ||
		anyIn(from, updateDomains) || anyIn(subject, updateKeywords) {
		return domain.TabUpdates
	}

	if anyIn(from, forumDomains) || anyIn(subject, forumKeywords) {
		return domain.TabForums
	}

	return domain.TabPrimary
}

func anyIn(text string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
