// Package subscription implements the newsletter subscription lifecycle.
//
// Each email moves through three states: absent, unverified, verified.
// Subscribe creates or re-tokens a record, Verify confirms ownership, and
// Unsubscribe hard-deletes it. The four HTTP operations are independent
// handler invocations with no shared in-process state; they coordinate only
// through the store's atomic single-record operations, so racing calls on the
// same email resolve last-writer-wins. Do not add locks.
//
// Subscribe and Unsubscribe return identical responses whether or not the
// record exists (enumeration resistance). The service layer encodes that by
// swallowing "not found" and "duplicate" outcomes; only Verify distinguishes
// an unknown token.
//
// The service depends on the Repository interface in repository.go and never
// imports net/http or database/sql.
package subscription
