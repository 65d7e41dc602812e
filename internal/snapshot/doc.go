// Package snapshot encodes game-state graphs into versioned, deterministic
// byte payloads and decodes them back.
//
// Wire form: a 6-byte magic ("EKSNAP"), the schema version as a uvarint,
// then the state document as RFC 8785 canonical JSON. The version is the
// first logical field of the payload, so decode can dispatch before
// touching the body. Identical graphs always encode to identical bytes;
// the integrity checksum depends on it.
package snapshot
