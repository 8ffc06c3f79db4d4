package parser

// isEntryStart checks if a character is valid to be the start of a new entry
func isEntryStart(char rune) bool {
	return isIdentifierStart(char) || char == '#' || char == '-'
}

// isIdentifierStart checks if a character is valid to be the start of an identifier
func isIdentifierStart(char rune) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

// isIdentifierFollowing checks if a character is valid to be part of an identifier
func isIdentifierFollowing(char rune) bool {
	return isIdentifierStart(char) || isDigit(char) || char == '_' || char == '-'
}

// isDigit checks if a character is an ASCII digit
func isDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

// isHexDigit checks if a character is a valid hexadecimal digit
func isHexDigit(char rune) bool {
	return isDigit(char) || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')
}

// hasLowercase checks if a string contains any lowercase ASCII letter
func hasLowercase(str string) bool {
	for _, char := range str {
		if char >= 'a' && char <= 'z' {
			return true
		}
	}
	return false
}
