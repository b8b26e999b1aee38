//go:build !xhashdebug

package xhash

const contractChecks = false
