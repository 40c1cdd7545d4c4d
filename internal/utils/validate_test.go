package utils

import "testing"

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"+79991234567",
		"79991234567",
		"8 (999) 123-45-67",
		"  +79991234567  ",
	}
	for _, phone := range valid {
		if !IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = false, want true", phone)
		}
	}

	invalid := []string{
		"",
		"123",
		"phone",
		"+7999123456789012345",
		"12-34",
	}
	for _, phone := range invalid {
		if IsValidPhone(phone) {
			t.Errorf("IsValidPhone(%q) = true, want false", phone)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@mail.ru", " user@example.com "}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{"", "user", "user@", "@example.com", "user@example", "a b@example.com"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}
