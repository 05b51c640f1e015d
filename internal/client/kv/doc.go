// Package kv is the client's keyed local persistent store. Every component
// owns a disjoint set of keys; values are JSON documents.
//
// Get returns (nil, nil) for an absent key. SetMany and DeleteMany apply all
// keys in one transaction, so a pair of keys written together is never
// observed half-updated.
package kv
