// Package types defines the Backend interface, the record model, entity
// structs for every collection, and the standard errors shared by the docket
// packages.
//
// Records cross the storage edge as untyped maps; entity structs convert to
// and from them through ToRecord and Decode.
package types
