// Package account implements the account deletion workflow.
//
// Deleting an account is an ordered, partially-tolerant sequence:
// active or trialing billing subscriptions are canceled at the
// provider first, then the provider customer is removed, and only
// then is the local identity deleted. A failure to cancel a live
// subscription aborts the whole flow so the user is never left
// paying for an account that no longer exists. A failure to remove
// the provider customer is logged and tolerated; it leaves no
// recurring charge behind. Local rows owned by the user go away with
// the identity row via cascading deletes.
package account
