package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formOverhead is room left in the body cap for the non-file fields
const formOverhead = 1 << 20

// evaluationForm is a submitted evaluation request
type evaluationForm struct {
	JobDescription string `form:"job_description" validate:"required_without=JobURL"`
	JobURL         string `form:"jd_url" validate:"omitempty,url,startswith=http"`
	ResumeName     string `form:"resume" validate:"required"`

	resumeData []byte
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseEvaluationForm reads and validates a multipart evaluation request.
// The whole body is capped at maxUpload plus formOverhead and the résumé itself at maxUpload.
func (s *Server) parseEvaluationForm(w http.ResponseWriter, r *http.Request) (*evaluationForm, error) {
	limit := s.maxUploadBytes + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if r.ContentLength > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		if isTooLarge(err) {
			return nil, &http.MaxBytesError{Limit: limit}
		}
		return nil, &ErrValidation{Field: "form", Message: "expected multipart/form-data"}
	}

	form := &evaluationForm{
		JobDescription: strings.TrimSpace(r.FormValue("job_description")),
		JobURL:         strings.TrimSpace(r.FormValue("jd_url")),
	}

	file, header, err := r.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, &ErrValidation{Field: "resume", Message: "unreadable upload"}
	default:
		defer func() { _ = file.Close() }()
		if header.Size > s.maxUploadBytes {
			return nil, &http.MaxBytesError{Limit: s.maxUploadBytes}
		}
		form.ResumeName = header.Filename
		if form.ResumeName == "" {
			form.ResumeName = "resume.pdf"
		}
		form.resumeData, err = io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
	}

	if err := s.validator.Struct(form); err != nil {
		return nil, validationError(err)
	}
	return form, nil
}

// submittedValue returns a field of an already parsed form; it never reads the body
func submittedValue(r *http.Request, key string) string {
	if r.MultipartForm == nil {
		return ""
	}
	if values := r.MultipartForm.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// validationError converts the first validator failure into an ErrValidation
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		message := "is required"
		switch fe.Tag() {
		case "required_without":
			message = "is required when jd_url is empty"
		case "url", "startswith":
			message = "must be an http or https URL"
		}
		return &ErrValidation{Field: fe.Field(), Message: message}
	}
	return &ErrValidation{Field: "form", Message: "invalid request"}
}
