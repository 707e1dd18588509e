// Package registeruser implements the Register User use case.
//
// Anonymous callers may register themselves as members. The staff flag is only honored when
// the caller is staff. The password is stored as a hash and never returned.
package registeruser
