// Package encryption implements the payload format of an IntuneWin container.
//
// A payload is laid out as
//
//	[32-byte HMAC-SHA256][16-byte IV][AES-256-CBC ciphertext, PKCS#7 padded]
//
// The MAC covers the IV and the ciphertext. Encryption streams the source in fixed-size
// chunks and back-patches the MAC once the body is on disk, so the target must be seekable.
// Decryption authenticates the whole payload before any plaintext is produced.
package encryption
