package analysis

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeForm trims sub and encodes it as the multipart form both the CLI and
// the daemon send. It returns the body and its Content-Type.
func EncodeForm(sub Submission) (*bytes.Buffer, string, error) {
	return encodeSubmission(sub.trimmed())
}

// encodeSubmission builds the outbound form. Optional text fields are only
// written when non-empty; sub must already be trimmed.
func encodeSubmission(sub Submission) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct {
		name  string
		value string
	}{
		{"phone", sub.Phone},
		{"contactName", sub.ContactName},
		{"notes", sub.Notes},
		{"correction", sub.Correction},
	}
	for i, field := range fields {
		if i > 0 && field.value == "" {
			continue
		}
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", field.name, err)
		}
	}

	if sub.Audio != nil {
		contentType := strings.TrimSpace(sub.Audio.ContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="%s"`, quoteEscaper.Replace(AudioFilename(sub.Audio))))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create audio part: %w", err)
		}
		if sub.Audio.Content != nil {
			if _, err := io.Copy(part, sub.Audio.Content); err != nil {
				return nil, "", fmt.Errorf("copy audio: %w", err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// AudioFilename picks the filename forwarded for a recording: the original
// name, else audio.<subtype> from the MIME type (webm when the subtype is
// empty), else the literal "audio" when no MIME type is known.
func AudioFilename(audio *Audio) string {
	if audio == nil {
		return "audio"
	}
	if audio.Filename != "" {
		return audio.Filename
	}
	mediaType := strings.TrimSpace(audio.ContentType)
	if mediaType == "" {
		return "audio"
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	} else if before, _, found := strings.Cut(mediaType, ";"); found {
		mediaType = before
	}
	_, subtype, _ := strings.Cut(mediaType, "/")
	subtype = strings.TrimSpace(subtype)
	if subtype == "" {
		subtype = "webm"
	}
	return "audio." + subtype
}
