// Package removeuser implements the Remove User use case.
//
// Users may delete themselves, staff may delete anyone. Copies of the user's open loans go back
// on the shelf before the loans are deleted with the user.
package removeuser
