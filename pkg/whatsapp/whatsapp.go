// Package whatsapp builds wa.me deep links. No send API is involved;
// the link opens a prefilled chat in the recipient's WhatsApp client.
package whatsapp

import (
	"errors"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const baseURL = "https://wa.me/"

var ErrInvalidPhone = errors.New("invalid_phone")

// Link returns a wa.me URL for the phone number, which may be in any
// local format the default region can disambiguate. The message, when
// present, is URL-encoded into the text parameter.
func Link(phone, defaultRegion, message string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}

	// wa.me wants the E.164 digits without the plus sign.
	digits := strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")

	link := baseURL + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link, nil
}
