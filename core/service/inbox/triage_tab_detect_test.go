package inbox

import (
	"testing"

	"triage_server/core/domain"
)

func TestDetectTab(t *testing.T) {
	tests := []struct {
		name  string
		email *domain.EmailRecord
		want  domain.InboxTab
	}{
		{
			name:  "social domain",
			email: &domain.EmailRecord{From: "notification@facebookmail.com", Subject: "Weekend photos"},
			want:  domain.TabSocial,
		},
		{
			name:  "social subject keyword",
			email: &domain.EmailRecord{From: "someone@example.com", Subject: "Anna mentioned you in a comment"},
			want:  domain.TabSocial,
		},
		{
			name:  "promo category wins over update keywords",
			email: &domain.EmailRecord{From: "x@example.com", Subject: "Account update", Category: domain.CategoryPromo},
			want:  domain.TabPromotions,
		},
		{
			name:  "newsletter flag routes to promotions",
			email: &domain.EmailRecord{From: "weekly@digest.io", Subject: "This week in Go", IsNewsletter: true},
			want:  domain.TabPromotions,
		},
		{
			name:  "promo subject keyword",
			email: &domain.EmailRecord{From: "store@shop.example", Subject: "Flash sale ends tonight"},
			want:  domain.TabPromotions,
		},
		{
			name:  "finance category routes to updates",
			email: &domain.EmailRecord{From: "x@mybank.example", Subject: "hello", Category: domain.CategoryFinance},
			want:  domain.TabUpdates,
		},
		{
			name:  "update subject keyword",
			email: &domain.EmailRecord{From: "x@example.com", Subject: "Your receipt from yesterday"},
			want:  domain.TabUpdates,
		},
		{
			name:  "forum domain",
			email: &domain.EmailRecord{From: "list@googlegroups.com", Subject: "hello"},
			want:  domain.TabForums,
		},
		{
			name:  "forum subject keyword",
			email: &domain.EmailRecord{From: "x@example.com", Subject: "Weekly digest"},
			want:  domain.TabForums,
		},
		{
			name:  "plain mail is primary",
			email: &domain.EmailRecord{From: "mom@example.com", Subject: "dinner sunday?"},
			want:  domain.TabPrimary,
		},
		{
			name:  "nil email is primary",
			email: nil,
			want:  domain.TabPrimary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTab(tt.email); got != tt.want {
				t.Errorf("DetectTab() = %v, want %v", got, tt.want)
			}
		})
	}
}
