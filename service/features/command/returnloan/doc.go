// Package returnloan implements the Return Loan use case.
//
// The borrower or a staff member closes an open loan and the copy goes back on the shelf.
// The loan row is locked before its status is checked, so a loan cannot be returned twice.
package returnloan
