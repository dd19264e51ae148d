package registry

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"lostwatch/internal/apperr"
	"lostwatch/internal/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Submission is the inbound body of a report.
type Submission struct {
	SerialNumber string   `json:"serial_number" validate:"required,max=128"`
	Status       string   `json:"status" validate:"required,oneof=lost found"`
	Email        string   `json:"email" validate:"required,email,max=320"`
	Model        string   `json:"model,omitempty" validate:"max=255"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	DateReported string   `json:"date_reported" validate:"required"`
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

func validate() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		vTrans, _ = uni.GetTranslator("en")

		vInst = validator.New(validator.WithRequiredStructEnabled())
		// messages name the json field
		vInst.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(vInst, vTrans)
	})
	return vInst, vTrans
}

// Report validates the submission and turns it into an unsaved record.
// It never touches the store.
func (s Submission) Report() (*models.WatchReport, error) {
	s.SerialNumber = models.NormalizeSerial(s.SerialNumber)
	s.Status = strings.ToLower(strings.TrimSpace(s.Status))
	s.Email = strings.TrimSpace(s.Email)
	s.Model = strings.TrimSpace(s.Model)
	s.DateReported = strings.TrimSpace(s.DateReported)

	v, trans := validate()
	if err := v.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return nil, apperr.Validation(ve[0].Field(), ve[0].Translate(trans))
		}
		return nil, apperr.Validation("", err.Error())
	}

	reported, ok := parseDate(s.DateReported)
	if !ok {
		return nil, apperr.Validation("date_reported", "date_reported must be YYYY-MM-DD or RFC 3339")
	}

	return &models.WatchReport{
		SerialNumber: s.SerialNumber,
		Status:       models.Status(s.Status),
		Email:        s.Email,
		Model:        s.Model,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		DateReported: reported,
	}, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
