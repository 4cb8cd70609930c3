package codec

import "bytes"

// PutText copies s into dst, keeping the last byte of dst as a terminator,
// and zero-fills whatever is left. It returns the number of bytes of s kept.
func PutText(dst []byte, s string) int {
	if len(dst) == 0 {
		return 0
	}
	n := copy(dst[:len(dst)-1], s)
	clear(dst[n:])
	return n
}

// Text returns the string stored in a fixed-capacity field.
func Text(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

// TruncateText returns s as it will read back from a field of the given capacity.
func TruncateText(s string, capacity int) string {
	if capacity <= 0 {
		return ""
	}
	if i := indexZero(s); i >= 0 {
		s = s[:i]
	}
	if len(s) > capacity-1 {
		s = s[:capacity-1]
	}
	return s
}

func indexZero(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i
		}
	}
	return -1
}
