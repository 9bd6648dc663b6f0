//go:build netlib

package main

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/netlib/blas/netlib"
)

// Build with -tags netlib to run every mat product on the system CBLAS
// instead of the pure Go implementation.
func init() {
	blas64.Use(netlib.Implementation{})
}
