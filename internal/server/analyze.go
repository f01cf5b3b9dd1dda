package server

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
	"capturedesk/internal/logging"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	form, err := readAnalyzeForm(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request too large", nil)
			return
		}
		s.log(r).Info("unreadable analyze form", logging.Error(err))
		s.writeError(w, r, http.StatusBadRequest, "invalid form body", nil)
		return
	}

	sub := analysis.Submission{
		Phone:       form.values.Get("phone"),
		ContactName: form.values.Get("contactName"),
		Notes:       form.values.Get("notes"),
		Correction:  form.values.Get("correction"),
		Audio:       form.audio,
	}

	result, err := s.analyzer.Analyze(r.Context(), sub)
	if err != nil {
		var analysisErr *analysis.Error
		if !errors.As(err, &analysisErr) {
			analysisErr = &analysis.Error{Kind: analysis.KindUpstreamBadResponse, Err: err}
		}
		var details []string
		if analysisErr.Kind == analysis.KindValidation {
			details = analysisErr.Details
		}
		s.writeError(w, r, analysisErr.HTTPStatus(), string(analysisErr.Kind), details)
		return
	}

	s.writeJSON(w, r, http.StatusOK, api.SuccessResponse(result))
}

// analyzeForm holds the text fields of one analyze request and the first
// file uploaded under "audio".
type analyzeForm struct {
	values url.Values
	audio  *analysis.Audio
}

// readAnalyzeForm walks multipart bodies part by part and falls back to
// URL-encoded forms. The body is already capped, so parts are buffered in
// memory.
func readAnalyzeForm(r *http.Request) (analyzeForm, error) {
	reader, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return analyzeForm{}, err
		}
		return analyzeForm{values: r.PostForm}, nil
	}
	if err != nil {
		return analyzeForm{}, err
	}

	form := analyzeForm{values: url.Values{}}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return analyzeForm{}, err
		}
		err = form.add(part)
		_ = part.Close()
		if err != nil {
			return analyzeForm{}, err
		}
	}
}

func (f *analyzeForm) add(part *multipart.Part) error {
	name := part.FormName()
	if name == "" {
		return nil
	}
	data, err := io.ReadAll(part)
	if err != nil {
		return err
	}
	filename, isFile := partFilename(part)
	if !isFile {
		f.values.Add(name, string(data))
		return nil
	}
	// Only the first recording is forwarded. Other file fields are dropped.
	if name == "audio" && f.audio == nil {
		f.audio = &analysis.Audio{
			Filename:    filename,
			ContentType: part.Header.Get("Content-Type"),
			Content:     bytes.NewReader(data),
		}
	}
	return nil
}

// partFilename reports whether the part's Content-Disposition carries a
// filename parameter. An empty filename still marks a file; it is returned as
// "" so the upstream name is synthesized from the content type.
func partFilename(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	if !ok {
		return "", false
	}
	if name == "" {
		return "", true
	}
	return filepath.Base(name), true
}
