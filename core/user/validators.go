package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/ferjoo/tutorias/core"
)

var (
	// password policy
	pwdMinLen     = 4
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	core.Validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// userStructValidation does struct level validation on NewUser and UpdateUser structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		if usr.Imported {
			if len([]rune(usr.Password)) < pwdMinLen {
				sl.ReportError(usr.Password, "password", "Password", pwdMinLenTag, "")
			}
			return
		}
		validatePassword(usr.Password, sl, usr.Username, usr.Email, usr.FirstName)
	case UpdateUser:
		if !usr.Password.Valid {
			return
		}
		uname, email, name := usr.orig.Username, usr.orig.Email, usr.orig.FirstName
		if usr.Username.Valid {
			uname = usr.Username.String
		}
		if usr.Email.Valid {
			email = usr.Email.String
		}
		if usr.FirstName.Valid {
			name = usr.FirstName.String
		}
		validatePassword(usr.Password.String, sl, uname, email, name)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 4
// - no whitespace
// - no user attrs similarity
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len([]rune(pwd)) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
	}
	if tooSimilar(pwd, attrs...) {
		reportErr(pwdAttrSimTag)
	}
}

// tooSimilar reports whether pwd resembles one of the (non-empty) attrs.
func tooSimilar(pwd string, attrs ...string) bool {
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return true
		}
	}
	return false
}
