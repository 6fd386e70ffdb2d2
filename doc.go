// Package auth implements the credential authentication layer for the
// brightcart API: signup, login, token refresh, and request-time bearer
// token verification.
//
// Identity storage:
//   - Users are persisted via Bun with a unique email constraint. The
//     repository translates the driver's unique violation into a conflict
//     error, so concurrent signups for the same email resolve to exactly
//     one created account.
//
// Tokens:
//   - TokenService signs HS256 JWTs binding a user id and email with the
//     service-wide issuer, audience, and TTL. Tokens are stateless; validity
//     is signature plus claim checks, there is no revocation list. The guard
//     middleware re-resolves the subject against the store on every request,
//     which is what substitutes for revocation after an account disappears.
//
// Failure semantics:
//   - Unknown email and wrong password collapse into one undifferentiated
//     invalid-credentials error. Expired and malformed tokens keep distinct
//     text codes for diagnostics but surface as the same 401 to callers.
package auth
