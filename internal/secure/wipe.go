// Package secure scrubs plaintext secret material from memory once the sync
// engine is done with it.
//
// Pulled values only live between the store call and the file write, and
// pushed values between the file read and the store call. Wiping the buffers
// afterwards keeps them out of later heap dumps and core files.
package secure

import "github.com/awnumar/memguard"

// Wipe overwrites b with zeroes. It is safe to call with a nil slice.
//
// Callers must own b: never wipe a slice that is still referenced by a
// backend client or cache.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}
