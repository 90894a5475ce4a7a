// Package snapshot provides the fingerprinted configuration document that
// handlers read while serving requests.
//
// A Snapshot is immutable once constructed. The Cell holds the single
// "current" snapshot: one writer publishes with Store, any number of readers
// call Load without blocking. A request loads the cell once and keeps that
// value for its whole lifetime.
package snapshot
