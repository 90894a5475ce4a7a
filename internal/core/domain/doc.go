// Package domain defines the coded errors shared by rest0 components.
//
// Every error carries a stable code of the form R0-<AREA>-<NNNN>, where the
// last four digits start with the HTTP status class the error maps to.
// Errors compare with errors.Is by code, so a DomainError returned with
// extra details still matches its sentinel.
package domain
