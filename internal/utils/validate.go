package utils

// IsDigits reports whether s is exactly n ASCII digits.
func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidPhone accepts mainland mobile numbers written as 11 digits.
func ValidPhone(phone string) bool {
	return IsDigits(phone, 11)
}

// ValidCode accepts six digit verification codes.
func ValidCode(code string) bool {
	return IsDigits(code, 6)
}
