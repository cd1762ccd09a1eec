package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Passwords read from the terminal are wiped this way once they have been
// sent to the server.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
