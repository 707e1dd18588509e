// Package updateuser implements the Update User use case.
//
// Users may update themselves, staff may update anyone. Only staff may change the staff flag.
// A password given with the update replaces the stored hash.
package updateuser
