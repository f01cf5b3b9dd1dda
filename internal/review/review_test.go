package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
	"capturedesk/internal/review"
	"capturedesk/internal/testsupport"
)

func strPtr(s string) *string { return &s }

func TestFromResponse(t *testing.T) {
	high := analysis.PriorityHigh
	capture := api.Capture{ContactName: "Marcus Lee", Phone: "+15551230003", Notes: "renewal"}
	draft := review.FromResponse(capture, api.AnalyzeResponse{
		OK: true,
		Review: &analysis.Review{
			Title:    "Renewal",
			Summary:  "Discussed renewal",
			DueDate:  strPtr("2024-03-01"),
			Priority: &high,
			Status:   "Open",
		},
		Transcript: strPtr("hello"),
	})

	if draft.ID == "" {
		t.Fatal("expected generated id")
	}
	if draft.Title != "Renewal" || draft.Summary != "Discussed renewal" || draft.Status != "Open" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.DueDate == nil || *draft.DueDate != "2024-03-01" || draft.Priority == nil || *draft.Priority != high {
		t.Fatalf("unexpected due/priority: %+v", draft)
	}
	if draft.ContactName != "Marcus Lee" || draft.ContactPhone != "+15551230003" {
		t.Fatalf("unexpected contact fields: %+v", draft)
	}
	if draft.Transcript == nil || *draft.Transcript != "hello" {
		t.Fatalf("unexpected transcript: %v", draft.Transcript)
	}
}

func TestFromResponseFallbacks(t *testing.T) {
	draft := review.FromResponse(api.Capture{Phone: "+15551234567"}, api.AnalyzeResponse{
		OK:         true,
		Review:     &analysis.Review{DueDate: strPtr("")},
		Transcript: strPtr(""),
	})
	if draft.Title != "Follow up with +15551234567" {
		t.Fatalf("unexpected title: %q", draft.Title)
	}
	if draft.Summary != "No summary provided." {
		t.Fatalf("unexpected summary: %q", draft.Summary)
	}
	if draft.DueDate != nil || draft.Priority != nil || draft.Transcript != nil {
		t.Fatalf("expected empty optional fields, got %+v", draft)
	}

	named := review.FromResponse(api.Capture{ContactName: "Lily Chen", Phone: "+15551230008"}, api.AnalyzeResponse{OK: true})
	if named.Title != "Follow up with Lily Chen" {
		t.Fatalf("expected contact name in fallback title, got %q", named.Title)
	}
}

func TestStub(t *testing.T) {
	now := time.Date(2024, time.February, 28, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		capture    api.Capture
		correction string
		summary    string
		title      string
		priority   analysis.Priority
	}{
		{
			name:     "notes",
			capture:  api.Capture{Phone: "+15551230001", Notes: "Call back"},
			summary:  "Call back",
			title:    "Follow up with +15551230001",
			priority: analysis.PriorityLow,
		},
		{
			name:     "audio only with contact",
			capture:  api.Capture{ContactName: "Nina Gomez", Phone: "+15551230004", Notes: " ", AudioPath: "memo.webm"},
			summary:  "Audio note received from Nina Gomez",
			title:    "Follow up with Nina Gomez",
			priority: analysis.PriorityMedium,
		},
		{
			name:       "correction appended",
			capture:    api.Capture{Phone: "+1555", Notes: "xyz"},
			correction: " move to Friday ",
			summary:    "xyz (Adjusted after feedback: move to Friday)",
			title:      "Follow up with +1555",
			priority:   analysis.PriorityHigh,
		},
		{
			name:     "audio only without contact",
			capture:  api.Capture{Phone: "+15551234567", AudioPath: "memo.webm"},
			summary:  "Audio note received from +15551234567",
			title:    "Follow up with +15551234567",
			priority: analysis.PriorityLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := review.Stub(tt.capture, tt.correction, now)
			if draft.Summary != tt.summary {
				t.Fatalf("expected summary %q, got %q", tt.summary, draft.Summary)
			}
			if draft.Title != tt.title {
				t.Fatalf("expected title %q, got %q", tt.title, draft.Title)
			}
			if draft.Priority == nil || *draft.Priority != tt.priority {
				t.Fatalf("expected priority %q, got %v", tt.priority, draft.Priority)
			}
			if draft.DueDate == nil || *draft.DueDate != "2024-02-29" {
				t.Fatalf("expected tomorrow as due date, got %v", draft.DueDate)
			}
			if draft.Status != "Open" || draft.Transcript != nil || draft.ID == "" {
				t.Fatalf("unexpected draft: %+v", draft)
			}
		})
	}
}

func TestStubDueDateRollsOverYear(t *testing.T) {
	draft := review.Stub(api.Capture{Phone: "+1", Notes: "n"}, "", time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))
	if *draft.DueDate != "2025-01-01" {
		t.Fatalf("expected 2025-01-01, got %s", *draft.DueDate)
	}
}

func TestPendingStore(t *testing.T) {
	ctx := context.Background()
	pending := review.NewPendingStore(testsupport.MustOpenStore(t, testsupport.NewConfig(t)))

	if _, err := pending.Load(ctx); !errors.Is(err, review.ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}

	capture := api.Capture{ContactID: "2", ContactName: "Priya Patel", Phone: "+15551230002", Notes: "quote"}
	draft := review.Stub(capture, "", time.Now())
	if err := pending.Save(ctx, review.Pending{Capture: capture, Draft: draft, Offline: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := pending.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Capture != capture || loaded.Draft.ID != draft.ID || !loaded.Offline || loaded.UpdatedAt.IsZero() {
		t.Fatalf("unexpected pending review: %+v", loaded)
	}

	if err := pending.Discard(ctx); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := pending.Load(ctx); !errors.Is(err, review.ErrNoPending) {
		t.Fatalf("expected ErrNoPending after discard, got %v", err)
	}
}

func TestPendingStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	kv := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := kv.Set(ctx, review.PendingKey, "{not json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := review.NewPendingStore(kv).Load(ctx); !errors.Is(err, review.ErrNoPending) {
		t.Fatalf("expected corrupt entry to read as none, got %v", err)
	}
}
