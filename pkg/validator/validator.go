package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

func ValidateRegister(username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	validatePassword(password, errs)

	return errs
}

func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidatePost(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Post content is required")
	} else if len(content) > 5000 {
		errs.Add("content", "Post content is too long")
	}

	return errs
}

func ValidateComment(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Comment content is required")
	} else if len(content) > 2000 {
		errs.Add("content", "Comment content is too long")
	}

	return errs
}

func ValidateService(title string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Service title is required")
	} else if len(title) < 2 {
		errs.Add("title", "Service title must be at least 2 characters")
	} else if len(title) > 200 {
		errs.Add("title", "Service title is too long")
	}

	return errs
}

func ValidateInstance(name, dom string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Instance name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Instance name is too long")
	}

	dom = strings.TrimSpace(dom)
	if dom == "" {
		errs.Add("domain", "Instance domain is required")
	} else if !domainRegex.MatchString(dom) {
		errs.Add("domain", "Instance domain must be a valid hostname")
	}

	return errs
}

func ValidateSkill(name string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Skill name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Skill name is too long")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
