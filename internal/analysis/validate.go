package analysis

import "strings"

const (
	msgPhoneRequired = "phone is required"
	msgNotesOrAudio  = "at least one of notes or audio is required"
)

// Validate returns every violation in sub, in rule order. An empty result
// means the submission may be forwarded.
func Validate(sub Submission) []string {
	var details []string
	if strings.TrimSpace(sub.Phone) == "" {
		details = append(details, msgPhoneRequired)
	}
	if strings.TrimSpace(sub.Notes) == "" && sub.Audio == nil {
		details = append(details, msgNotesOrAudio)
	}
	return details
}
