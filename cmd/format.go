package cmd

// clip shortens s to at most n runes for table display. Byte slicing would
// split multi-byte runes in URLs and model names.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
