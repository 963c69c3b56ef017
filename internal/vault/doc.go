// Package vault holds the storage-independent rules of a CredHex vault:
// the certificate model, the upload validation policy, the naming policy
// that derives collision-safe storage keys, and the Store contract that
// object-storage adapters implement.
//
// Every key has the form "{userID}/{storedName}" and storedName has the form
// "{uploadUnixMillis}_{originalFileName}". Users never share a prefix, so a
// key computed for one user can never address another user's object.
package vault
