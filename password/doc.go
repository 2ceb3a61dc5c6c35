// Package password implements password hashing and verification.
//
// # Output format
//
// Argon2id hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// with salt and hash in unpadded standard base64, as other PHC
// implementations write them.
//
// bcrypt hashes use the standard modular crypt format ($2a$<cost>$...).
// [NewHasher] selects the algorithm once, at construction time.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. It enforces byte-length
// bounds on the plaintext because both algorithms have cost or correctness
// limits tied to input size; every other rule about who may sign up lives in
// the service layer.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive digests.
//   - Import any other sharedauth package.
//   - Log plaintext passwords, digests, or hash parameters at runtime.
package password
