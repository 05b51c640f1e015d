// Package cryptox holds the small amount of cryptography devfeed needs:
// sealing local records under a device key and hashing account passwords.
package cryptox
