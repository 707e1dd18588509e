// Package getloan implements the loan detail query.
package getloan
