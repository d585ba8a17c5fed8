// Package validation decodes request bodies into typed commands and checks
// them before any store access.
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"flashplan/apperr"
	"flashplan/models"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var validate = validator.New()

// Credentials is the register/login command.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PlanRef identifies a plan. The client sometimes posts the whole plan
// object, in which case the id arrives as "id".
type PlanRef struct {
	PlanID string `json:"planId"`
	ID     string `json:"id"`
}

type StatusChange struct {
	PlanID string                  `json:"planId" validate:"required"`
	Status models.MembershipStatus `json:"status" validate:"required,oneof=upcoming completed"`
}

type NotificationUpdate struct {
	NotificationID string `json:"notificationId"`
	MarkAllRead    bool   `json:"markAllRead"`
}

type NotificationRef struct {
	NotificationID string `json:"notificationId" validate:"required"`
}

type Profile struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Location  string `json:"location" validate:"required"`
	Age       string `json:"age" validate:"required"`
	Avatar    string `json:"avatar"`
}

type Avatar struct {
	Avatar string `json:"avatar" validate:"required"`
}

type SettingsReplace struct {
	Settings models.Settings `json:"settings" validate:"required"`
}

// Decode reads one JSON object from r into dst.
func Decode(r io.Reader, dst interface{}) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return apperr.Validation(apperr.MsgInvalidJSON)
	}
	return nil
}

// DecodeCredentials validates register/login input and case-folds the email.
// Registration additionally enforces MinPasswordLength.
func DecodeCredentials(r io.Reader, registering bool) (*Credentials, error) {
	var c Credentials
	if err := Decode(r, &c); err != nil {
		return nil, err
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	if c.Email == "" || c.Password == "" {
		return nil, apperr.Validation("Email y contraseña requeridos")
	}
	if err := validate.Struct(&c); err != nil {
		return nil, apperr.Validation("Email no válido")
	}
	if registering && len(c.Password) < MinPasswordLength {
		return nil, apperr.Validation("La contraseña debe tener al menos 6 caracteres")
	}
	return &c, nil
}

// DecodePlanRef returns the plan id from either planId or id.
func DecodePlanRef(r io.Reader) (string, error) {
	var ref PlanRef
	if err := Decode(r, &ref); err != nil {
		return "", err
	}
	id := strings.TrimSpace(ref.PlanID)
	if id == "" {
		id = strings.TrimSpace(ref.ID)
	}
	if id == "" {
		return "", apperr.Validation("planId es obligatorio")
	}
	return id, nil
}

func DecodeStatusChange(r io.Reader) (*StatusChange, error) {
	var s StatusChange
	if err := Decode(r, &s); err != nil {
		return nil, err
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fieldError(err, map[string]string{
			"PlanID": "planId es obligatorio",
			"Status": "Estado no válido",
		})
	}
	return &s, nil
}

func DecodeNotificationUpdate(r io.Reader) (*NotificationUpdate, error) {
	var n NotificationUpdate
	if err := Decode(r, &n); err != nil {
		return nil, err
	}
	if !n.MarkAllRead && n.NotificationID == "" {
		return nil, apperr.Validation("notificationId o markAllRead es obligatorio")
	}
	return &n, nil
}

func DecodeNotificationRef(r io.Reader) (*NotificationRef, error) {
	var n NotificationRef
	if err := Decode(r, &n); err != nil {
		return nil, err
	}
	if err := validate.Struct(&n); err != nil {
		return nil, apperr.Validation("notificationId es obligatorio")
	}
	return &n, nil
}

func DecodeProfile(r io.Reader) (*Profile, error) {
	var p Profile
	if err := Decode(r, &p); err != nil {
		return nil, err
	}
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Location = strings.TrimSpace(p.Location)
	p.Age = strings.TrimSpace(p.Age)
	if err := validate.Struct(&p); err != nil {
		return nil, apperr.Validation("Todos los campos son obligatorios")
	}
	return &p, nil
}

func DecodeAvatar(r io.Reader) (*Avatar, error) {
	var a Avatar
	if err := Decode(r, &a); err != nil {
		return nil, err
	}
	if err := validate.Struct(&a); err != nil {
		return nil, apperr.Validation("avatar es obligatorio")
	}
	return &a, nil
}

func DecodeSettings(r io.Reader) (*SettingsReplace, error) {
	var s SettingsReplace
	if err := Decode(r, &s); err != nil {
		return nil, err
	}
	if err := validate.Struct(&s); err != nil {
		return nil, apperr.Validation("settings es obligatorio")
	}
	return &s, nil
}

// fieldError picks the message for the first failing field.
func fieldError(err error, messages map[string]string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[verrs[0].Field()]; ok {
			return apperr.Validation(msg)
		}
	}
	return apperr.Validation("Datos no válidos")
}
