package analysis_test

import (
	"testing"

	"capturedesk/internal/analysis"
)

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"lowercase", "high", "high"},
		{"uppercase", "HIGH", "high"},
		{"mixed case", "Medium", "medium"},
		{"low", "low", "low"},
		{"unknown word", "urgent", ""},
		{"padded", " high ", ""},
		{"dotted capital I", "HİGH", ""},
		{"fullwidth letters", "ＨＩＧＨ", ""},
		{"empty", "", ""},
		{"number", 3.0, ""},
		{"bool", true, ""},
		{"object", map[string]any{"level": "high"}, ""},
		{"single element array", []any{"LOW"}, "low"},
		{"two element array", []any{"low", "high"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.NormalizePriority(tt.value)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || string(*got) != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalizePriorityIdempotent(t *testing.T) {
	for _, value := range []string{"LOW", "medium", "High"} {
		first := analysis.NormalizePriority(value)
		if first == nil {
			t.Fatalf("expected %q to normalize", value)
		}
		second := analysis.NormalizePriority(*first)
		if second == nil || *second != *first {
			t.Fatalf("normalizing %q twice changed the result: %v then %v", value, *first, second)
		}
	}
}

func TestNormalizeDueDate(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"empty", "", ""},
		{"iso date", "2024-01-05", "2024-01-05"},
		{"calendar invalid passes", "2024-13-40", "2024-13-40"},
		{"us format", "01/05/2024", ""},
		{"datetime", "2024-01-05T10:00:00Z", ""},
		{"trailing newline", "2024-01-05\n", ""},
		{"short year", "24-01-05", ""},
		{"non-ascii digits", "٢٠٢٤-٠١-٠٥", ""},
		{"number", 20240105.0, ""},
		{"array", []any{"2024-03-01"}, "2024-03-01"},
		{"object", map[string]any{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.NormalizeDueDate(tt.value)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	audio := &analysis.Audio{ContentType: "audio/webm"}
	tests := []struct {
		name string
		sub  analysis.Submission
		want []string
	}{
		{"complete with notes", analysis.Submission{Phone: "+15550001111", Notes: "hi"}, nil},
		{"complete with audio", analysis.Submission{Phone: "+15550001111", Audio: audio}, nil},
		{"blank phone", analysis.Submission{Phone: "   ", Notes: "hi"}, []string{"phone is required"}},
		{"blank notes no audio", analysis.Submission{Phone: "+1", Notes: " \t"}, []string{"at least one of notes or audio is required"}},
		{"nothing", analysis.Submission{}, []string{"phone is required", "at least one of notes or audio is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.Validate(tt.sub)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestAudioFilename(t *testing.T) {
	tests := []struct {
		name  string
		audio *analysis.Audio
		want  string
	}{
		{"original name", &analysis.Audio{Filename: "memo.m4a", ContentType: "audio/mp4"}, "memo.m4a"},
		{"from subtype", &analysis.Audio{ContentType: "audio/ogg"}, "audio.ogg"},
		{"parameters stripped", &analysis.Audio{ContentType: "audio/webm;codecs=opus"}, "audio.webm"},
		{"missing subtype", &analysis.Audio{ContentType: "audio/"}, "audio.webm"},
		{"bare type", &analysis.Audio{ContentType: "audio"}, "audio.webm"},
		{"no mime", &analysis.Audio{}, "audio"},
		{"nil", nil, "audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analysis.AudioFilename(tt.audio); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
